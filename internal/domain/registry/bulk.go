package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/status"
)

// bulkJob carries one unit through the two bulk phases. before is the
// status sampled up front; decisions key off it, not off re-reads, so a
// unit is never double-processed when another goroutine changes shared
// state mid-flight.
type bulkJob struct {
	name      string
	before    status.Status
	installed bool
}

// BulkInstallAndRegister brings every named unit to installed-and-
// registered state against cli. Installs run in parallel, one goroutine
// per unit that needs one; registrations run sequentially after all
// installs finish, because they mutate the same external CLI config.
// Returns per-name success. Duplicate names are processed once.
func (m *Manager) BulkInstallAndRegister(ctx context.Context, names []string, cli string, force bool) map[string]bool {
	results := make(map[string]bool, len(names))

	var jobs []*bulkJob
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		u, ok := m.Get(name)
		if !ok {
			m.log.Warn("unit not found", zap.String("name", name))
			results[name] = false
			continue
		}
		before := u.GetStatus(ctx, m.env, cli, false)
		if before == status.Both && !force {
			m.log.Debug("already installed and registered", zap.String("name", name))
			results[name] = true
			continue
		}
		jobs = append(jobs, &bulkJob{name: name, before: before})
	}

	if len(jobs) == 0 {
		return results
	}
	m.log.Info("bulk install",
		zap.Int("units", len(jobs)), zap.String("cli", cli), zap.Bool("force", force))

	var wg sync.WaitGroup
	for _, job := range jobs {
		if job.before == status.Installed && !force {
			job.installed = true
			continue
		}
		wg.Add(1)
		go func(job *bulkJob) {
			defer wg.Done()
			job.installed = m.Install(ctx, job.name, force)
		}(job)
	}
	wg.Wait()

	for _, job := range jobs {
		ok := job.installed
		if ok && (job.before == status.NotInstalled || job.before == status.Installed) {
			ok = m.Register(ctx, job.name, cli)
		}
		results[job.name] = ok
	}
	return results
}
