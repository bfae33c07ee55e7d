package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

func (u User) EntityID() int { return u.ID }

// UserDraft is the client-supplied subset of User fields; the id is always
// server-assigned.
type UserDraft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UserIDs     IDList `json:"user_ids"`
}

func (p Project) EntityID() int { return p.ID }

type ProjectDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserIDs     []int  `json:"user_ids"`
}

// IDList is an ordered list of user ids referenced by a project.
//
// Some backend variants return user_ids as a JSON array, others as a
// JSON-encoded string (e.g. "[1,2]"), and old migrations have produced bare
// scalars. Decoding normalizes all of those to []int; values that cannot be
// normalized decode to an empty list rather than failing the whole entity.
type IDList []int

func (l *IDList) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	ids, _ := NormalizeIDs(v)
	*l = ids
	return nil
}

func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(l))
}

// NormalizeIDs coerces an id list of uncertain shape to []int. It accepts a
// native sequence, a JSON-encoded string, or a single scalar; anything else
// yields an empty list with ok=false so callers can log a data-quality warning.
func NormalizeIDs(v any) (ids []int, ok bool) {
	switch t := v.(type) {
	case nil:
		return []int{}, true
	case []int:
		return append([]int{}, t...), true
	case IDList:
		return append([]int{}, t...), true
	case []any:
		out := make([]int, 0, len(t))
		for _, el := range t {
			if id, elok := coerceID(el); elok {
				out = append(out, id)
			}
		}
		return out, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return []int{}, true
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			// Doubly-encoded strings unwrap one level per pass; a decoded
			// string is always shorter than its input, so this terminates.
			if inner, isStr := decoded.(string); !isStr || inner != s {
				return NormalizeIDs(decoded)
			}
		}
		if id, elok := coerceID(s); elok {
			return []int{id}, true
		}
		return []int{}, false
	default:
		if id, elok := coerceID(v); elok {
			return []int{id}, true
		}
		return []int{}, false
	}
}

func coerceID(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// UserLabel resolves a user id to a display name via the given id→name lookup.
// Dangling references render as "User {id}" instead of disappearing.
func UserLabel(names map[int]string, id int) string {
	if name, ok := names[id]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return fmt.Sprintf("User %d", id)
}

// UserNameIndex builds the id→name lookup used to label project members.
func UserNameIndex(users []User) map[int]string {
	idx := make(map[int]string, len(users))
	for _, u := range users {
		idx[u.ID] = u.Name
	}
	return idx
}
