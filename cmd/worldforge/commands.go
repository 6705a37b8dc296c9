package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/worldforge/internal/config"
	"github.com/jwebster45206/worldforge/internal/transport"
	"github.com/jwebster45206/worldforge/pkg/bridge"
	"github.com/jwebster45206/worldforge/pkg/world"
)

var (
	resumeID   string
	exportPath string
	peerAddr   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the console",
	RunE:  runPlay,
}

var erasCmd = &cobra.Command{
	Use:   "eras",
	Short: "List the eras you can start from",
	Args:  cobra.NoArgs,
	RunE:  runEras,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a saved world snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var peerCmd = &cobra.Command{
	Use:   "peer",
	Short: "Run a stand-in engine peer that logs every command",
	Long: `Run a stand-in for the engine plugin. In tcp mode it listens for the
bridge and acknowledges every command; in redis mode it subscribes to the
command channel.`,
	Args: cobra.NoArgs,
	RunE: runPeer,
}

func init() {
	playCmd.Flags().StringVar(&resumeID, "resume", "", "resume a saved session by id")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "write to file instead of stdout")
	peerCmd.Flags().StringVar(&peerAddr, "addr", "", "listen address (default from WORLDFORGE_PEER_HOST/PORT)")
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer session.Bridge().Disconnect()

	if resumeID != "" {
		id, err := uuid.Parse(resumeID)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", resumeID, err)
		}
		if err := session.Resume(ctx, id); err != nil {
			return err
		}
	}

	p := tea.NewProgram(NewConsoleUI(ctx, session, a.recorder), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

func runEras(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPERIOD")
	for _, e := range world.Eras() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.Period)
	}
	return w.Flush()
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.requireStorage(ctx)
	if err != nil {
		return err
	}
	list, err := store.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tERA\tATMOSPHERE\tCHOICES\tUPDATED")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.EraID, s.Atmosphere.Title(), s.ChoiceCount, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}

	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.requireStorage(ctx)
	if err != nil {
		return err
	}
	snap, err := store.LoadSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("session %s not found", id)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if exportPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportPath, err)
	}
	a.logger.Info("Snapshot exported", "session_id", id, "path", exportPath)
	return nil
}

func runPeer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	logCommand := func(c bridge.Command) {
		a.logger.Info("Command received", "type", c.Type, "summary", describeCommand(c))
	}

	if a.cfg.PeerTransport == config.TransportRedis {
		tr, err := a.newRedisTransport()
		if err != nil {
			return err
		}
		return tr.Listen(ctx, nil, logCommand)
	}

	addr := peerAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", a.cfg.PeerHost, a.cfg.PeerPort)
	}
	srv := transport.NewPeerServer(a.logger, transport.WithCommandHandler(logCommand))
	if err := srv.Listen(addr); err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	return srv.Serve(ctx)
}

// describeCommand is a one-line human summary of c.
func describeCommand(c bridge.Command) string {
	switch c.Type {
	case bridge.CmdSetEra:
		if c.Era != nil {
			return c.Era.Name
		}
	case bridge.CmdSetTrait:
		if c.Value != nil {
			return fmt.Sprintf("%s=%.2f", c.Trait, *c.Value)
		}
	case bridge.CmdSetAtmosphere:
		return c.Atmosphere.Title()
	case bridge.CmdSpawnSettlement:
		if c.Settlement != nil {
			return c.Settlement.Name
		}
	case bridge.CmdPlaceLandmark:
		if c.Landmark != nil {
			return fmt.Sprintf("%s (%s)", c.Landmark.Name, c.Landmark.Type)
		}
	case bridge.CmdAddFaction:
		if c.Faction != nil {
			return fmt.Sprintf("%s (%s)", c.Faction.Name, c.Faction.Disposition)
		}
	case bridge.CmdSyncWorldState:
		if c.State != nil {
			return fmt.Sprintf("%s, %d choices, %s", c.State.EraID(), len(c.State.Choices), c.State.Atmosphere.Title())
		}
	}
	return ""
}
