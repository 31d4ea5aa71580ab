package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var withS3 bool
	flag.BoolVar(&withS3, "s3", false, "also start a MinIO server for the s3 storage driver")
	flag.Parse()

	usage := `
Run the lebonrecoin testcontainers with the environment variables from the .env file.

Usage:

testcontainers [-h] [-s3] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -s3 -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	var testContainers *testutil.TestContainers
	go func() {
		var err error
		testContainers, err = testutil.CreateAllTestContainers(nil, withS3)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}

		cfg := testContainers.Config
		if cfg.StorageDriver == "s3" {
			ctx := context.Background()
			store, err := storage.NewS3Storage(ctx, storage.S3Options{
				Region:    cfg.S3Region,
				Bucket:    cfg.S3Bucket,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
				Endpoint:  cfg.S3Endpoint,
			})
			if err != nil {
				log.Fatalf("Failed to create s3 client: %v\n", err)
			}
			if err := store.EnsureBucket(ctx); err != nil {
				log.Fatalf("Failed to create bucket: %v\n", err)
			}
		}

		fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
			cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)
		if cfg.StorageDriver == "s3" {
			fmt.Printf("STORAGE_DRIVER=s3\nS3_ENDPOINT=%s\nS3_BUCKET=%s\nS3_ACCESS_KEY=%s\nS3_SECRET_KEY=%s\n",
				cfg.S3Endpoint, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
		}
	}()

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	if testContainers != nil {
		testContainers.Terminate(nil)
	}
}
