package memory

import (
	"time"

	"orquix-backend/pkg/preanalyst"

	"github.com/patrickmn/go-cache"
)

// ClarificationRepository keeps in-flight clarification sessions in memory.
// Sessions idle for an hour expire; nothing here survives a restart, which
// is fine since an abandoned clarification just restarts the exchange.
type ClarificationRepository struct {
	cache *cache.Cache
}

func NewClarificationRepository() *ClarificationRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ClarificationRepository{
		cache: c,
	}
}

func (r *ClarificationRepository) Save(session *preanalyst.ClarificationSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *ClarificationRepository) Get(sessionID string) (*preanalyst.ClarificationSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*preanalyst.ClarificationSession), true
	}
	return nil, false
}

func (r *ClarificationRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
