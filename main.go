/*
Robosearch plans collision-free moves for a few robots on a grid, each robot
heading to its own goal, with A* over the joint configuration of all robots.
Every expansion tries every combination of per-robot moves (stay included),
so the branching factor is 5^n and the approach only suits a handful of
robots. The plan is then replayed one step per tick and shown live in a
single page over a websocket.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robosearch/models"
	"robosearch/search"
	"robosearch/server"
	"robosearch/session"

	channerics "github.com/niceyeti/channerics/channels"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	dbg        *bool
	configPath *string
	levelPath  *string
	host       *string
	port       *string
)

func init() {
	dbg = flag.Bool("debug", false, "debug mode: verbose logs, and the small debug level when no level is given")
	configPath = flag.String("config", "./config.yaml", "search config file")
	levelPath = flag.String("level", "", "level file; a built-in level is used when empty")
	host = flag.String("host", "", "The host ip")
	port = flag.String("port", "8080", "The host port")
}

func selectLevel() (*models.Level, error) {
	if *levelPath != "" {
		return models.LoadLevel(*levelPath)
	}
	if *dbg {
		return models.Convert(models.DebugLevel, models.DebugAssignments)
	}
	return models.Convert(models.DefaultLevel, models.DefaultAssignments)
}

func loadConfig() (*search.Config, error) {
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.WithField("path", *configPath).Warn("no config file, using defaults")
		return search.DefaultConfig(), nil
	}
	return search.FromYaml(*configPath)
}

func runApp() (err error) {
	var cfg *search.Config
	if cfg, err = loadConfig(); err != nil {
		return
	}
	var level *models.Level
	if level, err = selectLevel(); err != nil {
		return
	}
	log.Debug("level:\n" + level.Grid.String())

	var sess *session.Session
	if sess, err = session.New(level, cfg); err != nil {
		return
	}

	var every time.Duration
	if every, err = cfg.ReplayEvery(); err != nil {
		return
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer appCancel()

	snapshots := make(chan session.Snapshot)
	var srv *server.Server
	if srv, err = server.NewServer(
		appCtx,
		*host+":"+*port,
		sess,
		snapshots,
	); err != nil {
		return
	}

	group, groupCtx := errgroup.WithContext(appCtx)
	group.Go(func() error {
		return srv.Serve(groupCtx)
	})
	group.Go(func() error {
		replay(groupCtx, sess, every, snapshots)
		return nil
	})
	return group.Wait()
}

// replay advances the loaded plan one step per tick and offers a snapshot to
// the views. Snapshots are dropped while no page is listening.
func replay(
	ctx context.Context,
	sess *session.Session,
	every time.Duration,
	snapshots chan<- session.Snapshot,
) {
	for range channerics.NewTicker(ctx.Done(), every) {
		if sess.AdvanceReplay() {
			log.WithField("positions", sess.RobotPositions()).Debug("replay step")
		}
		select {
		case snapshots <- sess.Snapshot():
		default:
		}
	}
}

func main() {
	flag.Parse()
	if *dbg {
		log.SetLevel(log.DebugLevel)
	}
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
