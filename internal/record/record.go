// Package record persists body trajectories produced by the engine.
package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/signalsfoundry/orrery/core"
	"github.com/signalsfoundry/orrery/internal/logging"
)

// ErrClosed is returned by a recorder after Close.
var ErrClosed = errors.New("recorder closed")

// Sink receives the scene once and then every frame. Sinks satisfy
// core.FrameObserver.
type Sink interface {
	OnStart(ctx context.Context, sc *core.Scene) error
	OnFrame(ctx context.Context, f *core.Frame) error
	Close(ctx context.Context) error
}

// PoseCounter is told how many poses each flush wrote.
type PoseCounter interface {
	AddRecordedPoses(n int)
}

// Run is one recording session.
type Run struct {
	ID        uint `gorm:"primaryKey"`
	StartedAt time.Time
	Stars     int
	Planets   int
	Moons     int
}

// RecordedPose is one body position at one frame.
type RecordedPose struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   uint   `gorm:"index"`
	Frame   uint64 `gorm:"index"`
	SimTime float64
	Body    string `gorm:"index"`
	Kind    string
	X       float64
	Y       float64
	Z       float64
}

// Options configure a SQLite recorder.
type Options struct {
	// Path is the database file; empty keeps the database in memory.
	Path string
	// Every records one frame out of Every. Values below 1 mean 1.
	Every int
	// Batch is the number of poses buffered before a write.
	Batch   int
	Logger  logging.Logger
	Counter PoseCounter
}

// SQLRecorder writes poses to SQLite through gorm.
type SQLRecorder struct {
	mu sync.Mutex

	db      *gorm.DB
	sqlDB   *sql.DB
	every   uint64
	batch   int
	log     logging.Logger
	counter PoseCounter

	run     Run
	pending []RecordedPose
	closed  bool
}

// Open opens the database and migrates the schema.
func Open(opts Options) (*SQLRecorder, error) {
	if opts.Every < 1 {
		opts.Every = 1
	}
	if opts.Batch < 1 {
		opts.Batch = 256
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}

	dsn := opts.Path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        opts.Batch,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open recording db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql interface: %w", err)
	}
	// An in-memory database lives as long as its single connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Run{}, &RecordedPose{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate recording db: %w", err)
	}

	return &SQLRecorder{
		db:      db,
		sqlDB:   sqlDB,
		every:   uint64(opts.Every),
		batch:   opts.Batch,
		log:     opts.Logger,
		counter: opts.Counter,
	}, nil
}

// OnStart opens a new run for sc.
func (r *SQLRecorder) OnStart(ctx context.Context, sc *core.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	run := Run{StartedAt: time.Now().UTC()}
	if sc != nil && sc.Registry != nil {
		run.Stars, run.Planets, run.Moons = sc.Registry.Counts()
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	r.run = run
	r.log.Info(ctx, "recording started",
		logging.Int("run", int(run.ID)),
		logging.Int("every", int(r.every)),
	)
	return nil
}

// OnFrame buffers the poses of every Every-th unpaused frame. A batch whose
// write fails is dropped, so the buffer never holds more than one batch
// plus one frame.
func (r *SQLRecorder) OnFrame(ctx context.Context, f *core.Frame) error {
	if f == nil || f.Paused || f.Index%r.every != 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	for _, b := range f.Bodies {
		r.pending = append(r.pending, RecordedPose{
			RunID:   r.run.ID,
			Frame:   f.Index,
			SimTime: f.SimTime,
			Body:    b.Name,
			Kind:    b.Kind.String(),
			X:       b.Position.X,
			Y:       b.Position.Y,
			Z:       b.Position.Z,
		})
	}
	if len(r.pending) < r.batch {
		return nil
	}
	return r.flushLocked(ctx)
}

// Flush writes buffered poses.
func (r *SQLRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.flushLocked(ctx)
}

func (r *SQLRecorder) flushLocked(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	n := len(r.pending)
	err := r.db.WithContext(ctx).CreateInBatches(r.pending, r.batch).Error
	r.pending = r.pending[:0]
	if err != nil {
		r.log.Warn(ctx, "dropping poses after failed write", logging.Int("count", n), logging.Err(err))
		return fmt.Errorf("write %d poses: %w", n, err)
	}
	if r.counter != nil {
		r.counter.AddRecordedPoses(n)
	}
	r.log.Debug(ctx, "poses flushed", logging.Int("count", n))
	return nil
}

// Close flushes and closes the database.
func (r *SQLRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	flushErr := r.flushLocked(ctx)
	r.closed = true
	return errors.Join(flushErr, r.sqlDB.Close())
}

// RunID returns the current run id, zero before OnStart.
func (r *SQLRecorder) RunID() uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run.ID
}

// Trajectory returns the recorded poses of body in frame order.
func (r *SQLRecorder) Trajectory(ctx context.Context, body string) ([]RecordedPose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	var poses []RecordedPose
	err := r.db.WithContext(ctx).
		Where("run_id = ? AND body = ?", r.run.ID, body).
		Order("frame").
		Find(&poses).Error
	return poses, err
}

// Count returns the number of poses written in the current run.
func (r *SQLRecorder) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrClosed
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&RecordedPose{}).Where("run_id = ?", r.run.ID).Count(&n).Error
	return n, err
}
