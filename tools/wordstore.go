package main

import (
	"chat-client/moderation"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Inspects and edits the persisted moderation dictionary.
// The chat client must not be running: badger holds a directory lock.
func main() {
	dbPath := flag.String("db", "./moderation-db", "Path to the moderation store")
	add := flag.String("add", "", "Pipe separated words to add")
	remove := flag.String("remove", "", "Pipe separated words to remove")
	flag.Parse()

	store, err := moderation.OpenWordStore(*dbPath, logs.GetLoggerFromString("ERROR"))
	if err != nil {
		log.Fatal("Error while opening the word store: ", err)
	}
	defer store.Close()

	if *add != "" {
		if err := store.Add(strings.Split(*add, "|")...); err != nil {
			log.Fatal(err)
		}
	}
	if *remove != "" {
		if err := store.Remove(strings.Split(*remove, "|")...); err != nil {
			log.Fatal(err)
		}
	}

	words, err := store.Words()
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Word"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for i, word := range words {
		table.Append([]string{strconv.Itoa(i + 1), word})
	}
	table.Render()
}
