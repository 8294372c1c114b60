package engine

import (
	"fmt"
	"log/slog"

	"github.com/drummonds/pdfthumbs/database"
	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// InitializeSchedules starts the maintenance sweep. The returned scheduler is
// already running; stop it on shutdown.
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	interval := serverHandler.ServerConfig.SweepInterval
	if interval <= 0 {
		interval = 30
	}

	c := cron.New()
	var sweepJob cron.Job
	sweepJob = cron.FuncJob(serverHandler.sweepJobFunc)
	sweepJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(sweepJob) //ensure we don't kick off another if old one is still running
	if _, err := c.AddJob(fmt.Sprintf("@every %dm", interval), sweepJob); err != nil {
		Logger.Error("Unable to schedule sweep job", "error", err)
		return c
	}
	Logger.Info("Adding sweep job scheduler", "interval_minutes", interval)
	c.Start()
	return c
}

// sweepJobFunc removes scratch directories left by crashed batches and
// forgets old jobs
func (serverHandler *ServerHandler) sweepJobFunc() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in sweep job", "panic", r)
		}
	}()

	job, err := serverHandler.DB.CreateJob(database.JobTypeSweep, "Sweeping scratch directories")
	if err != nil {
		Logger.Error("Failed to create sweep job", "error", err)
		return
	}
	serverHandler.DB.UpdateJobStatus(job.ID, database.JobStatusRunning, "Sweeping scratch directories")

	summary := database.SweepSummary{}
	summary.ScratchDirsRemoved, err = SweepStaleWorkspaces(serverHandler.ServerConfig.WorkDir, serverHandler.ServerConfig.ScratchTTL)
	if err != nil {
		Logger.Error("Scratch sweep failed", "workDir", serverHandler.ServerConfig.WorkDir, "error", err)
		serverHandler.DB.UpdateJobError(job.ID, fmt.Sprintf("Scratch sweep failed: %v", err))
		return
	}

	serverHandler.DB.UpdateJobProgress(job.ID, 50, "Deleting old jobs")
	if serverHandler.ServerConfig.JobRetention > 0 {
		summary.JobsDeleted, err = serverHandler.DB.DeleteOldJobs(serverHandler.ServerConfig.JobRetention)
		if err != nil {
			Logger.Error("Job cleanup failed", "error", err)
			serverHandler.DB.UpdateJobError(job.ID, fmt.Sprintf("Job cleanup failed: %v", err))
			return
		}
	}

	if err := serverHandler.DB.CompleteJob(job.ID, summary.String()); err != nil {
		Logger.Error("Failed to mark job as complete", "error", err)
	}
	Logger.Info("Sweep complete", "scratchDirsRemoved", summary.ScratchDirsRemoved, "jobsDeleted", summary.JobsDeleted)
}
