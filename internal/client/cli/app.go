package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/config"
	"github.com/dmitrijs2005/feedsync/internal/client/mutation"
	"github.com/dmitrijs2005/feedsync/internal/client/session"
	"github.com/dmitrijs2005/feedsync/internal/client/submit"
	"github.com/dmitrijs2005/feedsync/internal/client/uploads"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// App wires the FeedSync client core behind an interactive terminal session.
type App struct {
	config  *config.Config
	client  *api.HTTPClient
	store   *cache.Store
	engine  *mutation.Engine
	session *session.Session
	set     *uploads.AttachmentSet
	orch    *submit.Orchestrator
	actions *submit.Actions
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()
	log := logging.NewDefault()

	apiClient := api.NewHTTPClient(c.ServerEndpointAddr)

	var uploader uploads.Uploader = uploads.NewAPIUploader(apiClient, "posts")
	if c.UseS3Direct {
		s3, err := uploads.NewS3Uploader(ctx, uploads.S3Config{
			Endpoint:      c.S3Endpoint,
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			PublicBaseURL: c.S3PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 uploader: %w", err)
		}
		uploader = s3
	}

	store := cache.New()
	engine := mutation.NewEngine(store, log)
	sess := session.New(apiClient)
	coordinator := uploads.NewCoordinator(uploader, c.UploadTimeout, c.UploadParallelism, log)
	set := uploads.NewAttachmentSet(coordinator, log)
	effects := submit.NewSideEffectDispatcher(apiClient, log)
	refresh := submit.FeedRefresher(apiClient, c.FeedPageSize, log)

	return &App{
		config:  c,
		client:  apiClient,
		store:   store,
		engine:  engine,
		session: sess,
		set:     set,
		orch:    submit.NewOrchestrator(engine, apiClient, sess, set, effects, refresh, log),
		actions: submit.NewActions(engine, apiClient, sess, effects, refresh, log),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.client.AccessToken() != ""
}

func (a *App) getStatus() string {
	actor, err := a.session.CurrentActor()
	if err != nil {
		return "(guest)"
	}
	return fmt.Sprintf("(%s)", actor.DisplayName)
}

// Run starts the interactive session and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Println("Welcome to FeedSync CLI (type 'help' for commands)")

	_ = a.Login(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
