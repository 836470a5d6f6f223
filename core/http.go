package core

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

const HTTP_SERVICE = "http"

type HTTPService interface {
	Router() *mux.Router
	Handler() http.Handler
	Init() error
	Serve() error
	Shutdown(ctx context.Context) error

	Service
}
