package async

import (
	"context"
)

// Service is a long running background service. Start blocks until ctx is
// done, or the service could not be started.
type Service interface {
	Start(ctx context.Context) error
}
