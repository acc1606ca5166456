package bot

import (
	"dominoes/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a provisioned bot identity, picking the
// strategy tier from the identity's difficulty tag.
func NewAgent(botID string) (*Agent, error) {
	identity, _ := GetBotConfig(botID)
	strategy, err := NewBrain(levelForDifficulty(identity.Difficulty))
	if err != nil {
		return nil, err
	}
	name := GetBotDisplayName(botID)
	if name == "" {
		name = botID
	}
	return &Agent{ID: botID, Name: name, Strategy: strategy}, nil
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	player, ok := game.Players[a.ID]
	if !ok {
		// Agent is not part of this game
		return Move{Pass: true}, nil
	}

	move, err := a.Strategy.CalculateMove(game, player.Seat)
	if err != nil {
		return Move{Pass: true}, err
	}
	return move, nil
}

// OnGameEvent notifies the agent of a game event.
func (a *Agent) OnGameEvent(event interface{}) {
	a.Strategy.OnEvent(event)
}
