// Package example shows a service definition for a small user API.
package example

import (
	"context"
	"net/http"

	"github.com/starius/restcall"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserAPI is the client of the remote user service. Bind it with
// restcall.New before use.
type UserAPI struct {
	_ restcall.Header `name:"Accept" value:"application/json"`

	GetUser     func(ctx context.Context, id int64) (*User, error)                     `call:"GET /v1/users/{id}" args:"path=id"`
	ListUsers   func(ctx context.Context, page, perPage int) ([]User, error)           `call:"GET /v1/users" args:"page,per_page"`
	CreateUser  func(ctx context.Context, user *User) (*User, error)                   `call:"POST /v1/users" args:"body=json"`
	DeleteUser  func(ctx context.Context, id int64) error                              `call:"DELETE /v1/users/{id}" args:"path=id"`
	Avatar      func(ctx context.Context, id int64) (*http.Response, error)            `call:"GET /v1/users/{id}/avatar" args:"path=id"`
	StatUser    func(ctx context.Context, id int64) (*restcall.Envelope[*User], error) `call:"GET /v1/users/{id}" args:"path=id" headers:"X-Want-Stat: 1"`
	Impersonate func(ctx context.Context, id int64, token string) (*User, error)       `call:"POST /v1/users/{id}/impersonate" args:"path=id,header=X-Auth-Token"`
}
