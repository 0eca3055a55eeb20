package repository

import (
	"github.com/vidstream/vidstream-api/pkg/database"
)

// Repositories holds all repository interfaces.
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	History      HistoryRepository
}

// NewRepositories creates all repositories on a shared Postgres handle.
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		History:      NewHistoryRepository(db),
	}
}
