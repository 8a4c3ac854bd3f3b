package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/segbench"
	"github.com/hupe1980/segbench/blobstore"
	miniostore "github.com/hupe1980/segbench/blobstore/minio"
	s3store "github.com/hupe1980/segbench/blobstore/s3"
	"github.com/hupe1980/segbench/document"
)

// storeFlags select a blob store.
type storeFlags struct {
	kind           *string
	dir            *string
	bucket         *string
	prefix         *string
	minioEndpoint  *string
	minioAccessKey *string
	minioSecretKey *string
	minioSecure    *bool
}

func (f *storeFlags) open(ctx context.Context) (blobstore.Store, error) {
	switch *f.kind {
	case "local":
		return blobstore.NewLocalStore(*f.dir), nil

	case "minio":
		if *f.bucket == "" {
			return nil, fmt.Errorf("minio destination requires --bucket")
		}
		client, err := minio.New(*f.minioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(*f.minioAccessKey, *f.minioSecretKey, ""),
			Secure: *f.minioSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, *f.bucket, *f.prefix), nil

	case "s3":
		if *f.bucket == "" {
			return nil, fmt.Errorf("s3 destination requires --bucket")
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3store.NewStore(awss3.NewFromConfig(cfg), *f.bucket, *f.prefix), nil

	default:
		return nil, fmt.Errorf("unknown store %q", *f.kind)
	}
}

func addStoreFlags(cmd *kingpin.CmdClause) *storeFlags {
	return &storeFlags{
		kind: cmd.Flag("dest", "Destination store.").
			Envar("SEGBENCH_DEST").Default("local").Enum("local", "minio", "s3"),
		dir: cmd.Flag("dir", "Directory of the local destination.").
			Envar("SEGBENCH_DIR").Default(".").String(),
		bucket: cmd.Flag("bucket", "Bucket of the minio or s3 destination.").
			Envar("SEGBENCH_BUCKET").String(),
		prefix: cmd.Flag("prefix", "Key prefix inside the bucket.").
			Envar("SEGBENCH_PREFIX").String(),
		minioEndpoint: cmd.Flag("minio-endpoint", "MinIO endpoint host:port.").
			Envar("SEGBENCH_MINIO_ENDPOINT").Default("localhost:9000").String(),
		minioAccessKey: cmd.Flag("minio-access-key", "MinIO access key.").
			Envar("SEGBENCH_MINIO_ACCESS_KEY").Default("minioadmin").String(),
		minioSecretKey: cmd.Flag("minio-secret-key", "MinIO secret key.").
			Envar("SEGBENCH_MINIO_SECRET_KEY").Default("minioadmin").String(),
		minioSecure: cmd.Flag("minio-secure", "Use TLS for MinIO.").
			Envar("SEGBENCH_MINIO_SECURE").Bool(),
	}
}

// exportCommand renders a preset and saves it.
type exportCommand struct {
	g            *globalFlags
	preset       *string
	filename     *string
	assetsDir    *string
	releaseAfter *time.Duration
	dest         *storeFlags
}

func (cmd *exportCommand) run(_ *kingpin.ParseContext) error {
	ctx := context.Background()

	opts, _, err := cmd.g.options()
	if err != nil {
		return err
	}

	dest, err := cmd.dest.open(ctx)
	if err != nil {
		return err
	}
	opts = append(opts,
		segbench.WithDestination(dest),
		segbench.WithReleaseAfter(*cmd.releaseAfter),
	)
	if *cmd.assetsDir != "" {
		dir := document.NewStoreAssets(blobstore.NewLocalStore(*cmd.assetsDir), "")
		opts = append(opts, segbench.WithAssets(document.NewFallbackAssets(dir, nil)))
	}

	rt := segbench.New(opts...)
	defer func() { _ = rt.Close() }()

	if err := <-rt.Initialize(ctx); err != nil {
		return err
	}

	filename := *cmd.filename
	if filename == "" {
		filename = *cmd.preset + ".pdf"
	}

	start := time.Now()
	if err := rt.Export(ctx, *cmd.preset, filename); err != nil {
		return err
	}

	size := "?"
	if data, err := blobstore.ReadAll(ctx, dest, filename); err == nil {
		size = humanize.IBytes(uint64(len(data)))
	}
	fmt.Printf("%s %s (%s, %s) to %s\n",
		color.GreenString("exported"), filename, size,
		time.Since(start).Round(time.Millisecond), *cmd.dest.kind)
	return nil
}

func addExportCommand(app *kingpin.Application, g *globalFlags) {
	cmd := &exportCommand{g: g}
	export := app.Command("export", "Render a preset document and save it.").Action(cmd.run)
	cmd.preset = export.Arg("preset", "Preset to render.").Required().Enum(document.Presets()...)
	cmd.filename = export.Flag("out", "Destination file name. Defaults to <preset>.pdf.").Short('o').String()
	cmd.assetsDir = export.Flag("assets-dir", "Directory with <preset>.png or <preset>.jpg images replacing the built-in ones. Missing presets use the built-in image.").
		Envar("SEGBENCH_ASSETS_DIR").ExistingDir()
	cmd.releaseAfter = export.Flag("release-after", "How long the transient reference outlives the copy.").
		Envar("SEGBENCH_RELEASE_AFTER").Default("1s").Duration()
	cmd.dest = addStoreFlags(export)
}

// presetsCommand lists the document presets.
type presetsCommand struct{}

func (presetsCommand) run(_ *kingpin.ParseContext) error {
	for _, key := range document.Presets() {
		fmt.Println(key)
	}
	return nil
}

func addPresetsCommand(app *kingpin.Application) {
	cmd := presetsCommand{}
	app.Command("presets", "List the document presets.").Action(cmd.run)
}
