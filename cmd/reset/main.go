// Command reset wipes the local save database for a fresh start. The WAL and
// shared-memory sidecar files go with it so no stale pages survive.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "lifequest.db"
	}

	removed := 0
	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		err := os.Remove(path)
		switch {
		case err == nil:
			log.Printf("Removed %s", path)
			removed++
		case os.IsNotExist(err):
			// Nothing to clean up
		default:
			log.Fatalf("Failed to remove %s: %v", path, err)
		}
	}

	if removed == 0 {
		log.Printf("No save data found at %s, nothing to reset", dbPath)
		return
	}
	log.Println("Save data reset complete. The next launch starts a fresh game.")
}
