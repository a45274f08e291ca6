package service

import (
	"github.com/deppfellow/rentals-api/internal/lib/job"
	"github.com/deppfellow/rentals-api/internal/repository"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/server"
)

// Services groups the business layer. Resources holds one ResourceService per
// registered resource, keyed by path.
type Services struct {
	Resources map[string]*ResourceService
	Job       *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	resources := make(map[string]*ResourceService, len(s.Registry.All()))

	for _, def := range s.Registry.All() {
		var hooks []CreateHook
		if def == resource.Usuarios && s.Job != nil {
			hooks = append(hooks, WelcomeNotifier(s.Job, s.Metrics))
		}
		resources[def.Path] = NewResourceService(def, repos.For(def), hooks...)
	}

	return &Services{
		Resources: resources,
		Job:       s.Job,
	}
}

// For returns the service of a registered resource.
func (s *Services) For(def *resource.Definition) *ResourceService {
	return s.Resources[def.Path]
}
