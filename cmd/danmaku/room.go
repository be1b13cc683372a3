package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/danmaku/internal/config"
	"github.com/muurk/danmaku/internal/ui"
	"github.com/muurk/danmaku/internal/urls"
)

var roomNickname string

var roomCmd = &cobra.Command{
	Use:   "room",
	Short: "Manage saved rooms",
	Long: `Save rooms under a name so 'danmaku watch <name>' can be used instead of
the numeric room id. Rooms are stored in the config file.`,
}

var roomAddCmd = &cobra.Command{
	Use:     "add <name> <room-id>",
	Short:   "Save a room",
	Example: `  danmaku room add lofi 3470615 --nickname "late night radio"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runRoomAdd,
}

var roomListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved rooms",
	Args:  cobra.NoArgs,
	RunE:  runRoomList,
}

var roomRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a saved room",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomRemove,
}

func init() {
	roomAddCmd.Flags().StringVar(&roomNickname, "nickname", "", "Label shown by 'room list'")

	roomCmd.AddCommand(roomAddCmd, roomListCmd, roomRemoveCmd)
	rootCmd.AddCommand(roomCmd)
}

func runRoomAdd(cmd *cobra.Command, args []string) error {
	roomID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", args[1], err)
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := registry.AddRoom(args[0], roomID, roomNickname); err != nil {
		return err
	}
	if err := config.SaveRegistry(registry); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Room saved",
		ui.Param{Key: "Name", Value: args[0]},
		ui.Param{Key: "Room", Value: args[1]},
		ui.Param{Key: "Page", Value: urls.RoomPage(roomID)},
	)
	return nil
}

func runRoomList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	names := registry.RoomNames()
	if len(names) == 0 {
		p.Println("No saved rooms. Use 'danmaku room add <name> <room-id>'.")
		return nil
	}

	path, _ := config.GetConfigPath()
	p.PrintHeader("Saved rooms", path)
	for _, name := range names {
		room := registry.Rooms[name]
		p.Printf("%-16s %12d  %s\n", name, room.RoomID, room.Nickname)
		if !room.LastJoined.IsZero() {
			p.Printf("%-16s last joined %s\n", "", room.LastJoined.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func runRoomRemove(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := registry.RemoveRoom(args[0]); err != nil {
		return err
	}
	if err := config.SaveRegistry(registry); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Room removed", ui.Param{Key: "Name", Value: args[0]})
	return nil
}
