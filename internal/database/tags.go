package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const createTag = `
INSERT INTO tags (user_id, name)
VALUES ($1, $2)
RETURNING id, user_id, name
`

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error) {
	var t Tag
	err := q.pool.QueryRow(ctx, createTag, arg.UserID, arg.Name).Scan(&t.ID, &t.UserID, &t.Name)
	return t, err
}

const listTags = `
SELECT id, user_id, name
FROM tags
WHERE user_id = $1
ORDER BY name DESC, id DESC
`

// listAssignedTags only returns tags attached to at least one of the user's
// recipes, without duplicates.
const listAssignedTags = `
SELECT DISTINCT t.id, t.user_id, t.name
FROM tags t
JOIN recipe_tags rt ON rt.tag_id = t.id
WHERE t.user_id = $1
ORDER BY t.name DESC, t.id DESC
`

func (q *Queries) ListTags(ctx context.Context, arg ListTagsParams) ([]Tag, error) {
	query := listTags
	if arg.AssignedOnly {
		query = listAssignedTags
	}

	rows, err := q.pool.Query(ctx, query, arg.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

const updateTag = `
UPDATE tags
SET name = $3
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, name
`

func (q *Queries) UpdateTag(ctx context.Context, arg UpdateTagParams) (Tag, error) {
	var t Tag
	err := q.pool.QueryRow(ctx, updateTag, arg.ID, arg.UserID, arg.Name).Scan(&t.ID, &t.UserID, &t.Name)
	return t, err
}

const deleteTag = `
DELETE FROM tags
WHERE id = $1 AND user_id = $2
`

// DeleteTag returns pgx.ErrNoRows when the tag does not exist for this user.
func (q *Queries) DeleteTag(ctx context.Context, arg DeleteTagParams) error {
	tag, err := q.pool.Exec(ctx, deleteTag, arg.ID, arg.UserID)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
