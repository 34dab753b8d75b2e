// Command inspect dumps the stored chat messages of a badger database
// as a table. Useful to eyeball retention and key layout without
// starting the server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type storedMessage struct {
	ID       string `json:"id"`
	Room     string `json:"room"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Content  string `json:"content"`
	Type     string `json:"type"`
	At       int64  `json:"at"`
}

func main() {
	dbPath := flag.String("db", "data/badger", "Path to badger DB")
	room := flag.String("room", "", "Only show one room")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Room", "Author", "Type", "Timestamp", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	prefix := "msg:"
	if *room != "" {
		prefix = fmt.Sprintf("msg:%s:", *room)
	}

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var message storedMessage
				if err := json.Unmarshal(v, &message); err != nil {
					// Log the broken entry and keep going instead of stopping the dump.
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{
					string(item.Key()),
					message.Room,
					fmt.Sprintf("%s (%s)", message.Username, message.UserID),
					message.Type,
					time.Unix(0, message.At).UTC().Format(time.RFC3339),
					truncate(message.Content, 60),
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning Badger: ", err)
	}

	table.Render()
	if count == 0 {
		color.Yellow.Println("No stored messages found")
		return
	}
	color.Green.Printf("%d messages\n", count)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
