package presencectl

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func renderMessage(out io.Writer, errOut io.Writer, msg wireMessage) {
	stamp := color.GreenString(msg.Timestamp.Format("15:04:05"))
	switch msg.Type {
	case "SYSTEM":
		fmt.Fprintf(out, "%s %s %s\n", stamp, color.YellowString("system"), msg.Content)
	case "ACK":
		fmt.Fprintf(out, "%s %s %s\n", stamp, color.GreenString("ok"), msg.Content)
	case "ERROR":
		fmt.Fprintf(errOut, "%s %s %s\n", stamp, color.RedString("error"), msg.Content)
	case "ROOM_PRESENCE":
		var roster wireRoomPresence
		if err := json.Unmarshal(msg.Data, &roster); err != nil {
			fmt.Fprintf(errOut, "%s %s malformed roster payload: %v\n", stamp, color.RedString("error"), err)
			return
		}
		names := make([]string, 0, len(roster.Users))
		for _, user := range roster.Users {
			names = append(names, user.Username)
		}
		sort.Strings(names)
		fmt.Fprintf(out, "%s %s %s (%d): %s\n", stamp, color.CyanString("room"), roster.RoomID, roster.UserCount, strings.Join(names, ", "))
	case "ONLINE_USERS":
		fmt.Fprintf(out, "%s %s %s\n", stamp, color.CyanString("online"), msg.Content)
	default:
		fmt.Fprintf(out, "%s %s %s\n", stamp, msg.Type, msg.Content)
	}
}

func renderStats(out io.Writer, stats wireStats) {
	fmt.Fprintf(out, "sessions=%d rooms=%d online=%d\n\n", stats.TotalSessions, stats.TotalRooms, stats.TotalOnlineUsers)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Room", "Users"})
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

	rooms := make([]string, 0, len(stats.Rooms))
	for roomID := range stats.Rooms {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	for _, roomID := range rooms {
		table.Append([]string{roomID, strconv.Itoa(stats.Rooms[roomID])})
	}
	table.Render()
}
