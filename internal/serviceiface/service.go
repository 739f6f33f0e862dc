package serviceiface

// Service is the unit managed by the app manager. Services are started in
// the order declared in services.yaml and stopped in reverse.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
