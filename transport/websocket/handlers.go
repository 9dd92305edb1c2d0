package websocket

import (
	"context"
	"encoding/json"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

func (that *Server) handleGameState(_ context.Context, _ *Message) Payload {
	game, analysis, err := that.session.Game()
	if err != nil {
		return that.errorPayload("handleGameState", err)
	}

	return Payload{Game: game, Analysis: analysis}
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message) Payload {
	var req newGameRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return Payload{Error: "invalid payload"}
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		return that.errorPayload("handleNewGame", err)
	}

	game, err := that.session.NewGame(ctx, mode)
	if err != nil {
		return that.errorPayload("handleNewGame", err)
	}

	return Payload{Game: game}
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message) Payload {
	var req turnRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return Payload{Error: "invalid payload"}
	}

	if req.Row == nil || req.Col == nil {
		return Payload{Error: "row and col are required"}
	}

	game, analysis, err := that.session.PlayHuman(ctx, *req.Row, *req.Col)
	if err != nil {
		return that.errorPayload("handleGameTurn", err)
	}

	return Payload{Game: game, Analysis: analysis}
}

func (that *Server) handleGameStep(ctx context.Context, _ *Message) Payload {
	game, analysis, err := that.session.Step(ctx)
	if err != nil {
		return that.errorPayload("handleGameStep", err)
	}

	return Payload{Game: game, Analysis: analysis}
}

func (that *Server) handleGameResume(ctx context.Context, msg *Message) Payload {
	var req resumeRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.ID == "" {
		return Payload{Error: "id is required"}
	}

	game, err := that.session.Resume(ctx, req.ID)
	if err != nil {
		return that.errorPayload("handleGameResume", err)
	}

	return Payload{Game: game}
}

func (that *Server) handleTrainingState(_ context.Context, _ *Message) Payload {
	state := that.training.Snapshot()

	return Payload{Training: &state}
}

func (that *Server) errorPayload(method string, err error) Payload {
	that.logger.With("method", method).Info("request rejected", "error", err)

	return Payload{Error: err.Error()}
}
