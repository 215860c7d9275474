package web

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/cozy-labs/cozy-pokedex/core/coretest"
	"github.com/cozy-labs/cozy-pokedex/memstore"
	"github.com/gavv/httpexpect/v2"
)

func launchTestServer(t *testing.T, store core.Store) *httpexpect.Expect {
	t.Helper()

	logger := coretest.NewLogger(t)
	service := core.NewService(store, logger)
	handler := Handler(&Server{Logger: logger, Service: service})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
	})

	return httpexpect.Default(t, ts.URL)
}

// downStore is a store whose server cannot be reached.
type downStore struct {
	*memstore.Store
}

var errDown = errors.New("dial tcp: connection refused")

func (downStore) Ping(context.Context) error {
	return errDown
}

func (downStore) FindAll(context.Context) ([]core.Pokemon, error) {
	return nil, errDown
}

func TestCommon(t *testing.T) {
	t.Parallel()

	t.Run("Test the /status endpoint", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())
		e.GET("/status").Expect().Status(200).
			JSON().Object().HasValue("status", "OK")
		e.HEAD("/status").Expect().Status(200)
	})

	t.Run("Test the /status endpoint when the store is down", func(t *testing.T) {
		e := launchTestServer(t, downStore{memstore.New()})
		e.GET("/status").Expect().Status(500).
			JSON().Object().HasValue("status", "KO")
	})

	t.Run("Test that internal errors are not exposed", func(t *testing.T) {
		e := launchTestServer(t, downStore{memstore.New()})
		obj := e.GET("/pokemon").Expect().Status(500).
			JSON().Object()
		obj.HasValue("error", "internal_failure")
		obj.Value("reason").String().NotContains("connection refused")
	})

	t.Run("Test the request id", func(t *testing.T) {
		e := launchTestServer(t, memstore.New())
		e.GET("/pokemon").Expect().Status(200).
			Header("X-Request-Id").NotEmpty()
		e.GET("/pokemon").WithHeader("X-Request-Id", "my-request").
			Expect().Status(200).
			Header("X-Request-Id").IsEqual("my-request")
	})
}
