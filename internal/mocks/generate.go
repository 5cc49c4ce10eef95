// Package mocks provides gomock implementations of the repository and store ports.
//
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockProductRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), id).Return(product, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/target/wardrobe/internal/ports UserRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/target/wardrobe/internal/ports SessionStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=product_repository_mock.go github.com/target/wardrobe/internal/ports ProductRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=look_repository_mock.go github.com/target/wardrobe/internal/ports LookRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_repository_mock.go github.com/target/wardrobe/internal/ports EventRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=file_store_mock.go github.com/target/wardrobe/internal/ports FileStore
