package core

import (
	"fmt"
	"sort"
	"sync"

	gorilla "github.com/gorilla/mux"
	"github.com/samber/lo"
)

var (
	apis   = make(map[string]API)
	apisMu sync.RWMutex
)

type API interface {
	Name() string
	Configure(ctx Context, router *gorilla.Router) error
}

func RegisterAPI(api API) {
	apisMu.Lock()
	defer apisMu.Unlock()

	if _, ok := apis[api.Name()]; ok {
		panic(fmt.Sprintf("api already registered: %s", api.Name()))
	}

	apis[api.Name()] = api
}

func GetAPI(id string) API {
	apisMu.RLock()
	defer apisMu.RUnlock()

	api, ok := apis[id]

	if !ok {
		return nil
	}

	return api
}

// GetAPIList returns registered APIs sorted by name.
func GetAPIList() []API {
	apisMu.RLock()
	defer apisMu.RUnlock()

	keys := lo.Keys(apis)
	sort.Strings(keys)

	return lo.Map(keys, func(k string, _ int) API {
		return apis[k]
	})
}
