package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/adapter"
	"github.com/m-mizutani/oracle/pkg/interfaces"
	"github.com/m-mizutani/oracle/pkg/policy"
	"github.com/m-mizutani/oracle/pkg/repository"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
	"github.com/m-mizutani/oracle/pkg/usecase/oracle"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const (
	journalFile      = "file"
	journalFirestore = "firestore"
	journalGCS       = "gcs"
	journalSQLite    = "sqlite"
	journalMongo     = "mongodb"
	journalMemory    = "memory"
)

// config holds configuration values
type config struct {
	// Oracle
	geminiAPIKey     string
	geminiProject    string
	geminiLocation   string
	interpretModel   string
	imageModel       string
	personaPath      string
	policyDir        string
	interpretTimeout time.Duration
	synthesisTimeout time.Duration

	// Journal
	journal         string
	journalPath     string
	project         string
	database        string
	collection      string
	bucket          string
	mongoURI        string
	mongoDatabase   string
	journalKey      string
	credentialsFile string
}

// oracleFlags returns flags for the generative backend with destination config
func oracleFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key. Vertex AI is used when empty.",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini on Vertex AI",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini on Vertex AI",
			Value:       "global",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "interpret-model",
			Usage:       "Model that interprets queries (default " + adapter.DefaultInterpretModel + ")",
			Sources:     cli.EnvVars("ORACLE_INTERPRET_MODEL"),
			Destination: &cfg.interpretModel,
		},
		&cli.StringFlag{
			Name:        "image-model",
			Usage:       "Model that synthesizes images (default " + adapter.DefaultImageModel + ")",
			Sources:     cli.EnvVars("ORACLE_IMAGE_MODEL"),
			Destination: &cfg.imageModel,
		},
		&cli.StringFlag{
			Name:        "persona",
			Usage:       "Path to a YAML persona file overriding the directive and image style",
			Sources:     cli.EnvVars("ORACLE_PERSONA"),
			Destination: &cfg.personaPath,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego admission policies (package oracle, deny rules)",
			Sources:     cli.EnvVars("ORACLE_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
		&cli.DurationFlag{
			Name:        "interpret-timeout",
			Usage:       "Timeout of the interpret call, 0 to wait forever",
			Value:       oracle.DefaultInterpretTimeout,
			Sources:     cli.EnvVars("ORACLE_INTERPRET_TIMEOUT"),
			Destination: &cfg.interpretTimeout,
		},
		&cli.DurationFlag{
			Name:        "synthesis-timeout",
			Usage:       "Timeout of the image call, 0 to wait forever",
			Value:       oracle.DefaultSynthesisTimeout,
			Sources:     cli.EnvVars("ORACLE_SYNTHESIS_TIMEOUT"),
			Destination: &cfg.synthesisTimeout,
		},
	}
}

// journalFlags returns flags for journal persistence with destination config
func journalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "journal",
			Aliases:     []string{"j"},
			Usage:       "Journal backend (file, sqlite, firestore, gcs, mongodb, memory)",
			Value:       journalFile,
			Sources:     cli.EnvVars("ORACLE_JOURNAL"),
			Destination: &cfg.journal,
		},
		&cli.StringFlag{
			Name:        "journal-path",
			Usage:       "Journal file for the file and sqlite backends (default ~/.oracle/history.json or history.db)",
			Sources:     cli.EnvVars("ORACLE_JOURNAL_PATH"),
			Destination: &cfg.journalPath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for the firestore backend",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Firestore or MongoDB collection holding the journal document",
			Value:       repository.DefaultCollection,
			Sources:     cli.EnvVars("ORACLE_JOURNAL_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for the gcs backend",
			Sources:     cli.EnvVars("ORACLE_JOURNAL_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "mongodb-uri",
			Usage:       "Connection URI for the mongodb backend",
			Sources:     cli.EnvVars("ORACLE_MONGODB_URI"),
			Destination: &cfg.mongoURI,
		},
		&cli.StringFlag{
			Name:        "mongodb-database",
			Usage:       "Database for the mongodb backend",
			Value:       "oracle",
			Sources:     cli.EnvVars("ORACLE_MONGODB_DATABASE"),
			Destination: &cfg.mongoDatabase,
		},
		&cli.StringFlag{
			Name:        "journal-key",
			Usage:       "Slot name (sqlite), document ID (firestore, mongodb) or object name (gcs) of the journal",
			Sources:     cli.EnvVars("ORACLE_JOURNAL_KEY"),
			Destination: &cfg.journalKey,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Service account key file for Firestore and Cloud Storage",
			Sources:     cli.EnvVars("ORACLE_CREDENTIALS_FILE"),
			Destination: &cfg.credentialsFile,
		},
	}
}

func (cfg *config) clientOptions() []option.ClientOption {
	if cfg.credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.credentialsFile)}
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context, persona *oracle.Persona) (adapter.Gemini, error) {
	interpretModel, imageModel := persona.InterpretModel, persona.ImageModel
	if cfg.interpretModel != "" {
		interpretModel = cfg.interpretModel
	}
	if cfg.imageModel != "" {
		imageModel = cfg.imageModel
	}
	opts := []adapter.GeminiOption{
		adapter.WithGenerativeModel(interpretModel),
		adapter.WithImageModel(imageModel),
	}

	if cfg.geminiAPIKey != "" {
		return adapter.NewGemini(ctx, cfg.geminiAPIKey, opts...)
	}

	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-api-key or gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewVertexGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

func (cfg *config) newPersona() (*oracle.Persona, error) {
	if cfg.personaPath == "" {
		return oracle.DefaultPersona(), nil
	}
	return oracle.LoadPersona(cfg.personaPath)
}

// newPolicy loads the admission policy. It returns nil when no policy is configured.
func (cfg *config) newPolicy(ctx context.Context) (*policy.Admission, error) {
	return policy.Load(ctx, cfg.policyDir)
}

// newOracle wires the request pipeline
func (cfg *config) newOracle(ctx context.Context) (*oracle.UseCase, error) {
	persona, err := cfg.newPersona()
	if err != nil {
		return nil, err
	}

	admission, err := cfg.newPolicy(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx, persona)
	if err != nil {
		return nil, err
	}

	return oracle.New(gemini,
		oracle.WithPersona(persona),
		oracle.WithAdmission(admission),
		oracle.WithInterpretTimeout(cfg.interpretTimeout),
		oracle.WithSynthesisTimeout(cfg.synthesisTimeout),
	), nil
}

// newSlot creates the journal persistence backend
func (cfg *config) newSlot(ctx context.Context) (interfaces.Slot, error) {
	switch cfg.journal {
	case journalFile, "":
		path, err := cfg.localPath("history.json")
		if err != nil {
			return nil, err
		}
		return repository.NewFile(path), nil

	case journalSQLite:
		path, err := cfg.localPath("history.db")
		if err != nil {
			return nil, err
		}
		return repository.NewSQLite(ctx, path, cfg.journalKey)

	case journalFirestore:
		if cfg.project == "" {
			return nil, goerr.New("project is required for firestore journal")
		}
		if cfg.database == "" {
			return nil, goerr.New("database is required for firestore journal")
		}
		return repository.NewFirestore(ctx, cfg.project, cfg.database, cfg.collection, cfg.journalKey, cfg.clientOptions()...)

	case journalGCS:
		if cfg.bucket == "" {
			return nil, goerr.New("bucket is required for gcs journal")
		}
		storage, err := adapter.NewStorage(ctx, cfg.bucket, cfg.clientOptions()...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage")
		}
		return repository.NewObject(storage, cfg.journalKey), nil

	case journalMongo:
		if cfg.mongoURI == "" {
			return nil, goerr.New("mongodb-uri is required for mongodb journal")
		}
		return repository.NewMongo(ctx, cfg.mongoURI, cfg.mongoDatabase, cfg.collection, cfg.journalKey)

	case journalMemory:
		return repository.NewMemory(), nil

	default:
		return nil, goerr.New("unknown journal backend",
			goerr.V("journal", cfg.journal),
			goerr.V("supported", []string{journalFile, journalSQLite, journalFirestore, journalGCS, journalMongo, journalMemory}))
	}
}

// localPath returns journal-path, or fileName under ~/.oracle when unset
func (cfg *config) localPath(fileName string) (string, error) {
	if cfg.journalPath != "" {
		return cfg.journalPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to find home directory, set journal-path")
	}
	return filepath.Join(home, ".oracle", fileName), nil
}

// newJournal creates the journal and loads persisted entries
func (cfg *config) newJournal(ctx context.Context) (*journal.Store, error) {
	slot, err := cfg.newSlot(ctx)
	if err != nil {
		return nil, err
	}

	store := journal.New(slot)
	store.Load(ctx)
	return store, nil
}
