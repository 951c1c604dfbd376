package moana

import (
	"context"
	"fmt"
)

// CommandClearCache is the single recognized command on the controller command channel.
// It fully evicts every store, e.g. on explicit logout or session end.
const CommandClearCache = "CLEAR_CACHE"

// Command is a message sent from the host to the controller.
type Command struct {
	Type  string   // Command identifier, e.g. CommandClearCache
	Reply chan Ack // Reply channel the completion acknowledgement is posted on
}

// Ack is the completion acknowledgement posted back on a command's reply channel.
type Ack struct {
	Success bool `json:"success"`
}

// Run processes commands from the command channel until the context is cancelled.
// Unknown command types are acknowledged with Success set to false.
func (controller *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-controller.Commands:
			switch cmd.Type {
			case CommandClearCache:
				if err := controller.Repo.ClearStores(); err != nil {
					controller.WriteLog("ERROR", fmt.Sprintf("Clearing caches : %s", err.Error()))
					reply(cmd, Ack{Success: false})
					continue
				}
				controller.WriteLog("INFO", "Cleared all cache stores")
				reply(cmd, Ack{Success: true})
			default:
				controller.WriteLog("WARN", fmt.Sprintf("Unknown command %q", cmd.Type))
				reply(cmd, Ack{Success: false})
			}
		}
	}
}

func reply(cmd Command, ack Ack) {
	if cmd.Reply != nil {
		cmd.Reply <- ack
	}
}

// ClearCache sends the clear-all-caches command on the command channel and waits for
// the acknowledgement. The command loop must be running for this to complete.
func (controller *Controller) ClearCache(ctx context.Context) (Ack, error) {
	replyChannel := make(chan Ack, 1)

	select {
	case controller.Commands <- Command{Type: CommandClearCache, Reply: replyChannel}:
	case <-ctx.Done():
		return Ack{}, fmt.Errorf("sending clear cache command : %w", ctx.Err())
	}

	select {
	case ack := <-replyChannel:
		return ack, nil
	case <-ctx.Done():
		return Ack{}, fmt.Errorf("waiting for clear cache acknowledgement : %w", ctx.Err())
	}
}
