package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}

type Tag struct {
	ID     int64
	UserID int64
	Name   string
}

type Ingredient struct {
	ID     int64
	UserID int64
	Name   string
}

// Recipe carries its tag and ingredient rows when loaded through the
// recipe queries. Price is the text form of the NUMERIC column.
type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int32
	Price       string
	Link        pgtype.Text
	Description pgtype.Text
	ImageURL    pgtype.Text
	CreatedAt   pgtype.Timestamptz
	Tags        []Tag
	Ingredients []Ingredient
}
