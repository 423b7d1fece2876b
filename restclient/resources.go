package restclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
)

// Resource is a CRUD client for one backend collection. The payload field
// of list responses is named after the collection (`users`, `courses`, ...)
// with `data` as fallback.
type Resource[T any] struct {
	c    *Client
	path string
	key  string
}

func newResource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{c: c, path: path, key: path}
}

func (r Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var raw map[string]json.RawMessage
	if err := r.c.Get(ctx, r.path, query, &raw); err != nil {
		return nil, err
	}
	return r.decodeMany(raw)
}

// Page fetches one page of the collection and the reported total count
// (0 when the backend omits it).
func (r Resource[T]) Page(ctx context.Context, page, perPage int, query url.Values) ([]T, int, error) {
	var raw map[string]json.RawMessage
	if err := r.c.GetPage(ctx, r.path, page, perPage, query, &raw); err != nil {
		return nil, 0, err
	}
	items, err := r.decodeMany(raw)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if data, ok := raw["total"]; ok {
		_ = json.Unmarshal(data, &total)
	}
	return items, total, nil
}

func (r Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var env Envelope
	var item T
	if err := r.c.Get(ctx, r.path+"/"+id, nil, &env); err != nil {
		return item, err
	}
	return r.decodeOne(env, item)
}

func (r Resource[T]) Create(ctx context.Context, in interface{}) (T, error) {
	var env Envelope
	var item T
	if err := r.c.Post(ctx, r.path, in, &env); err != nil {
		return item, err
	}
	return r.decodeOne(env, item)
}

func (r Resource[T]) Update(ctx context.Context, id string, in interface{}) (T, error) {
	var env Envelope
	var item T
	if err := r.c.Put(ctx, r.path+"/"+id, in, &env); err != nil {
		return item, err
	}
	return r.decodeOne(env, item)
}

func (r Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.Delete(ctx, r.path+"/"+id, nil, nil)
}

func (r Resource[T]) decodeMany(raw map[string]json.RawMessage) ([]T, error) {
	data, ok := raw[r.key]
	if !ok {
		data, ok = raw["data"]
	}
	if !ok || len(data) == 0 {
		// absent payload field; callers must not assume presence
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding %s payload", r.path)
	}
	return items, nil
}

func (r Resource[T]) decodeOne(env Envelope, item T) (T, error) {
	if len(env.Data) == 0 {
		return item, errors.Errorf("%s: empty payload", r.path)
	}
	if err := json.Unmarshal(env.Data, &item); err != nil {
		return item, errors.Wrapf(err, "decoding %s payload", r.path)
	}
	return item, nil
}

func (c *Client) Users() Resource[User]             { return newResource[User](c, "users") }
func (c *Client) Courses() Resource[Course]         { return newResource[Course](c, "courses") }
func (c *Client) Modules() Resource[Module]         { return newResource[Module](c, "modules") }
func (c *Client) Lessons() Resource[Lesson]         { return newResource[Lesson](c, "lessons") }
func (c *Client) Quizzes() Resource[Quiz]           { return newResource[Quiz](c, "quizzes") }
func (c *Client) Enrollments() Resource[Enrollment] { return newResource[Enrollment](c, "enrollments") }
func (c *Client) Assignments() Resource[Assignment] { return newResource[Assignment](c, "assignments") }
