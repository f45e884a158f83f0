package memory_test

import (
	"testing"

	"github.com/fewston/stile/pkg/adapters/memory"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/ports"
)

type dto struct {
	Type string `json:"type"`
}

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore[dto]()
	ports.RunSessionStoreContract[dto](t, store, func(identity string) *domain.Session[dto] {
		sess := domain.NewSession[dto](identity)
		sess.DTO.Type = "office"
		return sess
	})
}
