// Command moanad runs the Moana Rentals backend: the offline asset cache
// controller in front of the site origin, plus the public/admin HTTP API over
// the property directory.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moanarentals/moana"
	"github.com/moanarentals/moana/api"
	"github.com/moanarentals/moana/db"
	"github.com/moanarentals/moana/directory"
	"github.com/moanarentals/moana/media"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	configDir, err := defaultConfigDir()
	if err != nil {
		return err
	}

	controller, err := moana.New(
		moana.WithConfigDir(configDir),
		moana.WithDefaultModifiers(),
	)
	if err != nil {
		return err
	}

	conn, err := db.New(filepath.Join(configDir, "moana.db"))
	if err != nil {
		return err
	}
	if err := controller.WithOptions(moana.WithRepo(db.NewCacheRepo(conn))); err != nil {
		return err
	}

	mongoURI := controller.Config.MongoURI
	if fromEnv := os.Getenv("MONGO_URI"); fromEnv != "" {
		mongoURI = fromEnv
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelConnect()
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return err
	}
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	dir, err := directory.New(mongoClient.Database(controller.Config.MongoDatabase))
	if err != nil {
		return err
	}

	var uploader *media.Uploader
	if controller.Config.UploadURL != "" {
		uploader, err = media.NewUploader(
			controller.Config.UploadURL,
			controller.Config.UploadPresets,
			controller.Config.UploadFolder,
		)
		if err != nil {
			return err
		}
	}

	secret := os.Getenv("MOANA_JWT_SECRET")
	if secret == "" {
		return errors.New("MOANA_JWT_SECRET must be set")
	}

	server, err := api.NewServer(dir, uploader, controller, []byte(secret))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache lifecycle: install the precache manifest, then roll the version over
	installCtx, cancelInstall := context.WithTimeout(ctx, 2*time.Minute)
	defer cancelInstall()
	if err := controller.Install(installCtx); err != nil {
		log.Printf("precache install skipped : %v", err)
	}
	if err := controller.Activate(); err != nil {
		return err
	}

	go controller.Run(ctx)

	listener, err := controller.GetListener(controller.Config.DefaultAddress, controller.Config.DefaultPort)
	if err != nil {
		return err
	}
	go func() {
		if err := controller.Serve(listener); err != nil {
			log.Printf("cache controller stopped : %v", err)
		}
	}()

	apiServer := &http.Server{
		Addr:    ":" + controller.Config.APIPort,
		Handler: server.Router(),
	}
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("api server stopped : %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[*] shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown : %v", err)
	}
	controller.Close()
	if controller.Repo != nil {
		if err := controller.Repo.Close(); err != nil {
			log.Printf("closing repo : %v", err)
		}
	}
	return nil
}

func defaultConfigDir() (string, error) {
	if dir := os.Getenv("MOANA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "moana"), nil
}
