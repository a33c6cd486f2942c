package model

import (
	"strings"
	"time"
)

// 注文の購入者
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Forename  string    `json:"forename"`
	Surname   string    `json:"surname"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Name() string {
	return strings.TrimSpace(u.Forename + " " + u.Surname)
}
