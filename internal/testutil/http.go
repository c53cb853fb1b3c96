package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/internstack/internstack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context. Use this
// in handler tests that read chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// StudentUser returns a SessionUser with the students role.
func StudentUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Student",
		Email: "student@test.com",
		Role:  "students",
	}
}

// CompanyUser returns a SessionUser with the companies role and the given
// verification status.
func CompanyUser(verification string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:                 primitive.NewObjectID().Hex(),
		Name:               "Test Company",
		Email:              "company@test.com",
		Role:               "companies",
		VerificationStatus: verification,
	}
}

// AdminUser returns a SessionUser with the admins role.
func AdminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admins",
	}
}

// WithUser injects a user into the request context, bypassing the session
// middleware.
func WithUser(r *http.Request, u *auth.SessionUser) *http.Request {
	return auth.WithTestUser(r, u)
}
