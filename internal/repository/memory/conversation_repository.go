package memory

import (
	"time"

	"userlens-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository() *ConversationRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Save(conversation *store.Conversation) {
	r.cache.Set(conversation.SessionId, conversation, cache.DefaultExpiration)
}

func (r *ConversationRepository) Get(sessionId string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

func (r *ConversationRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
