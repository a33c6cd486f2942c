package model

// IDVar はコミット前のINSERTの主キーを指すプレースホルダー。
// 同じトランザクション内の後続文の引数にそのまま渡せる。
type IDVar string
