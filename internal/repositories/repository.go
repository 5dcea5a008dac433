package repositories

import "context"

// Repository groups every repository used by the admission service
type Repository interface {
	// Candidate domain
	Candidate() CandidateRepository
	StatusChange() StatusChangeRepository
	Counter() CounterRepository

	// Content domain
	Gallery() GalleryRepository
	News() NewsRepository

	// Roster and profiles
	Admin() AdminRepository
	Profile() ProfileRepository

	// External collaborators
	User() UserRepository
	Blob() BlobRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
