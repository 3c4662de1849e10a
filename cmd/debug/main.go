// Command debug dumps the persisted game state as indented JSON, one section
// per collection. Useful for inspecting a save file without starting the API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/lifequest/engine/internal/store"
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

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", dbPath, err)
	}
	defer st.Close()

	ctx := context.Background()

	player, err := st.LoadPlayer(ctx)
	if err != nil {
		log.Fatalf("Failed to load player: %v", err)
	}
	if player == nil {
		fmt.Println("No player record: fresh game")
		return
	}
	dump("Player", player)

	quests, err := st.LoadQuests(ctx)
	if err != nil {
		log.Fatalf("Failed to load quests: %v", err)
	}
	dump("Quests", quests)

	bosses, err := st.LoadBosses(ctx)
	if err != nil {
		log.Fatalf("Failed to load bosses: %v", err)
	}
	dump("Bosses", bosses)

	loot, err := st.LoadLoot(ctx)
	if err != nil {
		log.Fatalf("Failed to load loot: %v", err)
	}
	dump("Pending loot", loot)

	penalties, err := st.LoadPenalties(ctx)
	if err != nil {
		log.Fatalf("Failed to load penalties: %v", err)
	}
	dump("Pending penalties", penalties)

	activity, err := st.LoadActivityLog(ctx)
	if err != nil {
		log.Fatalf("Failed to load activity log: %v", err)
	}
	dump("Activity log", activity)
}

func dump(section string, v interface{}) {
	fmt.Printf("--- %s ---\n", section)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to encode %s: %v", section, err)
		return
	}
	fmt.Println(string(data))
}
