// Composition root. Owns infrastructure (DB, Redis, file storage, OCR) and
// wires the record module on top of it.
package main

import (
	"context"

	"github.com/Abraxas-365/saenggibu/pkg/config"
	"github.com/Abraxas-365/saenggibu/pkg/fsx"
	"github.com/Abraxas-365/saenggibu/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/saenggibu/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/saenggibu/pkg/jobx"
	"github.com/Abraxas-365/saenggibu/pkg/jobx/jobxmem"
	"github.com/Abraxas-365/saenggibu/pkg/jobx/jobxredis"
	"github.com/Abraxas-365/saenggibu/pkg/logx"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/ocr/ocrclova"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord/recordinfra"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord/recordsrv"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the record module.
type Container struct {
	Config *config.Config

	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client
	Recognizer ocr.Recognizer
	Jobs       *jobx.Client

	RecordRepo     studentrecord.Repository
	RecordService  *recordsrv.RecordService
	RecordHandlers *recordsrv.RecordHandlers
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg}
	c.initInfrastructure()
	c.initModules()

	logx.Info("Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	c.initDatabase()
	c.initQueue()
	c.initFileStorage()
	c.initOCR()
}

func (c *Container) initDatabase() {
	if c.Config.Database.Driver == "memory" {
		c.RecordRepo = recordinfra.NewMemoryRecordRepository()
		logx.Warn("  Using in-memory record store; records are lost on restart")
		return
	}

	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)

	if err := recordinfra.Migrate(context.Background(), db); err != nil {
		logx.Fatalf("Failed to migrate database: %v", err)
	}

	c.DB = db
	c.RecordRepo = recordinfra.NewPostgresRecordRepository(db)
	logx.Info("  Database connected")
}

func (c *Container) initQueue() {
	jc := c.Config.Jobx

	var queue jobx.Queue
	switch jc.Backend {
	case "memory":
		queue = jobxmem.NewMemoryQueue()
		logx.Warn("  Using in-memory job queue; pending jobs are lost on restart")
	default:
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err := c.Redis.Ping(context.Background()).Err(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v (set JOBX_BACKEND=memory to run without it)", err)
		}
		queue = jobxredis.NewRedisQueue(c.Redis,
			jobxredis.WithPrefix(jc.Prefix),
			jobxredis.WithResultTTL(jc.ResultTTL),
		)
		logx.Info("  Redis connected")
	}

	c.Jobs = jobx.NewClient(queue,
		jobx.WithQueues(jc.Queues...),
		jobx.WithConcurrency(jc.Concurrency),
		jobx.WithPollInterval(jc.PollInterval),
		jobx.WithShutdownTimeout(jc.ShutdownTimeout),
		jobx.WithDequeueTimeout(jc.DequeueTimeout),
		jobx.WithDefaultRetryDelay(jc.DefaultRetryDelay),
	)
}

func (c *Container) initFileStorage() {
	sc := c.Config.Storage

	switch sc.Mode {
	case "s3":
		cfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(sc.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, sc.AWSBucket, sc.Prefix)
		logx.Infof("  S3 file system configured (bucket: %s, region: %s)", sc.AWSBucket, sc.AWSRegion)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(sc.UploadDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("  Local file system configured (path: %s)", localFS.GetBasePath())

	default:
		logx.Fatalf("Unknown STORAGE_MODE: %s (use 'local' or 's3')", sc.Mode)
	}
}

func (c *Container) initOCR() {
	oc := c.Config.OCR
	provider, err := ocrclova.NewProvider(oc.InvokeURL, oc.Secret,
		ocrclova.WithTimeout(oc.Timeout),
		ocrclova.WithMaxRetries(oc.MaxRetries),
	)
	if err != nil {
		logx.WithError(err).Warn("  OCR provider not configured; uploads are disabled")
		return
	}
	c.Recognizer = provider
	logx.Info("  CLOVA OCR provider configured")
}

// ---------------------------------------------------------------------------
// Modules
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	c.RecordService = recordsrv.NewRecordService(c.RecordRepo, c.FileSystem, c.Jobs, c.Recognizer,
		recordsrv.WithOCRWorkers(c.Config.OCR.Workers),
		recordsrv.WithOCROptions(ocr.WithLang(c.Config.OCR.Lang)),
		recordsrv.WithQueue(c.Config.Jobx.Queues[0]),
	)
	c.RecordService.RegisterJobs(c.Jobs)
	c.RecordHandlers = recordsrv.NewRecordHandlers(c.RecordService)
	logx.Info("  Record module ready")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// StartBackgroundServices runs the job workers until ctx is cancelled.
func (c *Container) StartBackgroundServices(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Jobs.Start(ctx); err != nil {
			logx.WithError(err).Error("Job worker stopped")
		}
	}()
	return done
}

func (c *Container) Cleanup() {
	logx.Info("Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		}
	}
}
