package status

import "sort"

// Resolver は履歴から現在のステータスを決める。
type Resolver struct {
	catalog *Catalog
}

func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

func (r *Resolver) Catalog() *Catalog {
	if r == nil {
		return nil
	}
	return r.catalog
}

// Sort は時刻の新しい順、同時刻ならコードの大きい順に並べる。
// 一括操作で同じ時刻に書かれた2件も常に同じ結果になる。
func Sort(history []Entry) {
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].At.Equal(history[j].At) {
			return history[i].At.After(history[j].At)
		}
		return history[i].Code > history[j].Code
	})
}

// Latest は現在の履歴行を返す。入力は変更しない。
func Latest(history []Entry) (Entry, error) {
	if len(history) == 0 {
		return Entry{}, ErrNoHistory
	}
	sorted := make([]Entry, len(history))
	copy(sorted, history)
	Sort(sorted)
	return sorted[0], nil
}

// Resolve は現在のステータスをカタログから引く。
func (r *Resolver) Resolve(history []Entry) (Status, error) {
	latest, err := Latest(history)
	if err != nil {
		return Status{}, err
	}
	return r.Catalog().Get(latest.Code)
}

// ResolveAll は所有者ごとの履歴をまとめて解決する。
func (r *Resolver) ResolveAll(histories map[int64][]Entry) (map[int64]Status, error) {
	out := make(map[int64]Status, len(histories))
	for owner, h := range histories {
		s, err := r.Resolve(h)
		if err != nil {
			return nil, err
		}
		out[owner] = s
	}
	return out, nil
}
