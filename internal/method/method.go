package method

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownMethod = errors.New("unknown method")

// Method は支払い・発送・返金の手段
type Method struct {
	Name        string
	DisplayName string
}

// Collection は名前で引ける手段の一覧。作成後は変更しない
type Collection struct {
	kind    string
	methods map[string]Method
	order   []string
}

// NewCollection は同名の手段が重複したらエラー
func NewCollection(kind string, methods ...Method) (*Collection, error) {
	c := &Collection{kind: kind, methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		if m.Name == "" {
			return nil, fmt.Errorf("%s method: name is required", kind)
		}
		if _, dup := c.methods[m.Name]; dup {
			return nil, fmt.Errorf("%s method %q is already defined", kind, m.Name)
		}
		c.methods[m.Name] = m
		c.order = append(c.order, m.Name)
	}
	return c, nil
}

func MustCollection(kind string, methods ...Method) *Collection {
	c, err := NewCollection(kind, methods...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collection) Kind() string { return c.kind }

func (c *Collection) Len() int { return len(c.methods) }

func (c *Collection) Exists(name string) bool {
	_, ok := c.methods[name]
	return ok
}

func (c *Collection) Get(name string) (Method, error) {
	m, ok := c.methods[name]
	if !ok {
		return Method{}, fmt.Errorf("%w: %s method %q", ErrUnknownMethod, c.kind, name)
	}
	return m, nil
}

// All は登録順
func (c *Collection) All() []Method {
	out := make([]Method, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.methods[n])
	}
	return out
}

// Names は名前順
func (c *Collection) Names() []string {
	out := append([]string(nil), c.order...)
	sort.Strings(out)
	return out
}

func Payments() *Collection {
	return MustCollection("payment",
		Method{Name: "card", DisplayName: "Card"},
		Method{Name: "cash", DisplayName: "Cash"},
		Method{Name: "cheque", DisplayName: "Cheque"},
		Method{Name: "manual", DisplayName: "Manual"},
		Method{Name: "voucher", DisplayName: "Voucher"},
	)
}

// Refunds は返金手段（支払い手段と同じ）
func Refunds() *Collection {
	ms := Payments().All()
	return MustCollection("refund", ms...)
}

func Dispatches() *Collection {
	return MustCollection("dispatch",
		Method{Name: "manual", DisplayName: "Manual"},
		Method{Name: "collection", DisplayName: "Collection in store"},
		Method{Name: "royal-mail", DisplayName: "Royal Mail"},
		Method{Name: "courier", DisplayName: "Courier"},
	)
}
