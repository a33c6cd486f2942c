package status

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrUnknownStatus = errors.New("unknown status code")
	ErrNoHistory     = errors.New("no status history")
)

// Code はステータスコード。大きいほどワークフロー上で後の状態。
type Code int

// 注文・明細で共通のコード
const (
	Cancelled           Code = -300
	AwaitingDispatch    Code = 0
	Processing          Code = 500
	PartiallyDispatched Code = 800
	PartiallyReceived   Code = 900
	Dispatched          Code = 1000
	Received            Code = 2000
)

type Status struct {
	Code Code   `json:"code"`
	Name string `json:"name"`
}

func (s Status) String() string {
	return fmt.Sprintf("%d %s", s.Code, s.Name)
}

// Catalog は起動時に組み立てて以降は変更しない。
type Catalog struct {
	byCode map[Code]Status
	codes  []Code
}

func NewCatalog(statuses ...Status) (*Catalog, error) {
	c := &Catalog{byCode: make(map[Code]Status, len(statuses))}
	for _, s := range statuses {
		if _, dup := c.byCode[s.Code]; dup {
			return nil, fmt.Errorf("status code %d is already defined", s.Code)
		}
		c.byCode[s.Code] = s
		c.codes = append(c.codes, s.Code)
	}
	sort.Slice(c.codes, func(i, j int) bool { return c.codes[i] < c.codes[j] })
	return c, nil
}

func MustCatalog(statuses ...Status) *Catalog {
	c, err := NewCatalog(statuses...)
	if err != nil {
		panic(err)
	}
	return c
}

// OrderCatalog は注文ステータスの標準セット
func OrderCatalog() *Catalog {
	return MustCatalog(
		Status{Cancelled, "Cancelled"},
		Status{AwaitingDispatch, "Awaiting Dispatch"},
		Status{Processing, "Processing"},
		Status{PartiallyDispatched, "Partially Dispatched"},
		Status{PartiallyReceived, "Partially Received"},
		Status{Dispatched, "Dispatched"},
		Status{Received, "Received"},
	)
}

// ItemCatalog は明細ステータスの標準セット
func ItemCatalog() *Catalog {
	return MustCatalog(
		Status{Cancelled, "Cancelled"},
		Status{AwaitingDispatch, "Awaiting Dispatch"},
		Status{Dispatched, "Dispatched"},
		Status{Received, "Received"},
	)
}

// nilのカタログは空として扱う
func (c *Catalog) Exists(code Code) bool {
	if c == nil {
		return false
	}
	_, ok := c.byCode[code]
	return ok
}

func (c *Catalog) Get(code Code) (Status, error) {
	if c == nil {
		return Status{}, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	s, ok := c.byCode[code]
	if !ok {
		return Status{}, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	return s, nil
}

// Validate は全コードがカタログにあるか確認する。
func (c *Catalog) Validate(codes []Code) error {
	for _, code := range codes {
		if !c.Exists(code) {
			return fmt.Errorf("%w: %d", ErrUnknownStatus, code)
		}
	}
	return nil
}

// Codes は昇順のコード一覧（コピー）
func (c *Catalog) Codes() []Code {
	if c == nil {
		return []Code{}
	}
	out := make([]Code, len(c.codes))
	copy(out, c.codes)
	return out
}

// Entry はステータス履歴の1行（追記のみ）
type Entry struct {
	Code Code
	At   time.Time
	By   *int64
}
