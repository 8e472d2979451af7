package handler

import (
	"context"
	"fmt"

	"scorebot/internal/command"
	"scorebot/internal/parse"
	"scorebot/internal/roster"
	"scorebot/internal/service"
)

// names resolves user ids to registered player names.
func names(ctx context.Context, rs *service.RosterService, ids ...string) ([]string, error) {
	table, err := rs.Table(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		name, ok := table.Name(id)
		if !ok {
			return nil, fmt.Errorf("%w: id %s", roster.ErrUnregistered, id)
		}
		out[i] = name
	}
	return out, nil
}

// argsOf returns the generic form of a command, or an empty one.
func argsOf(req *command.Request) *parse.ArgsCommand {
	if a, ok := req.Command.(*parse.ArgsCommand); ok {
		return a
	}
	return &parse.ArgsCommand{}
}
