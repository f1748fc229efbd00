package daemon

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgallagher/wxjournal/internal/cli"
	"github.com/dgallagher/wxjournal/internal/config"
	"github.com/dgallagher/wxjournal/internal/logger"
	"github.com/dgallagher/wxjournal/internal/scheduler"
	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

// reloadDebounce coalesces the burst of write events editors emit when
// saving the config file.
const reloadDebounce = 2 * time.Second

// NewDaemonCommand creates the daemon command
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the daily fetch on a schedule",
		Long: `Run in the foreground and fetch yesterday's weather once per day at the
configured run_time. Edits to the config file are picked up and the
schedule is rearmed, so changing run_time never needs a restart.`,
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}

	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	settings, err := cli.LoadSettings(cmd)
	if err != nil {
		return err
	}
	if settings.RunTime == "" {
		return &wxerrors.ConfigurationError{Field: "run_time"}
	}

	log, err := cli.NewLogger(cmd, settings, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, err := newScheduler(settings, log)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if settings.SourceFile == "" {
		log.Info("no config file in use; settings edits require a restart")
		<-ctx.Done()
		return nil
	}

	return watchConfig(ctx, cmd, settings.SourceFile, log, &sched)
}

// newScheduler builds a scheduler whose job fetches yesterday's weather
// with the given settings.
func newScheduler(settings *config.Settings, log *logger.Logger) (*scheduler.Scheduler, error) {
	service := cli.NewService(settings, log)
	job := func(ctx context.Context) {
		if err := service.FetchYesterday(ctx); err != nil {
			log.Error("scheduled fetch failed", zap.Error(err))
		}
	}
	return scheduler.New(settings.RunTime, job, log)
}

// watchConfig blocks until ctx is done, reloading settings and rearming
// the schedule whenever the config file changes.
func watchConfig(ctx context.Context, cmd *cobra.Command, configFile string, log *logger.Logger, sched **scheduler.Scheduler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(configFile); err != nil {
		return err
	}
	log.Info("watching config file", zap.String("path", configFile))

	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config watcher error", zap.Error(err))

		case <-reload:
			settings, err := cli.LoadSettings(cmd)
			if err != nil {
				log.Error("config reload failed, keeping previous schedule", zap.Error(err))
				continue
			}
			if settings.RunTime == "" {
				log.Info("run_time cleared; daily schedule disabled")
				(*sched).Stop()
				continue
			}

			next, err := newScheduler(settings, log)
			if err != nil {
				log.Error("config reload failed, keeping previous schedule", zap.Error(err))
				continue
			}
			(*sched).Stop()
			if err := next.Start(); err != nil {
				log.Error("rescheduling failed", zap.Error(err))
				continue
			}
			*sched = next
			log.Info("config reloaded, schedule rearmed", zap.String("run_time", settings.RunTime))
		}
	}
}
