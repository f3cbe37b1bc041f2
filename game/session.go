package game

import (
	"math/rand"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/environment"
)

// envSeedSalt separates the environment's random stream from the population's.
const envSeedSalt = 0x5eed

// Session drives a Game together with the obstacles and food it reacts to.
type Session struct {
	Game      *Game
	Obstacles *environment.ObstacleField
	Food      *environment.FoodField
}

// NewSession creates a game and its environment from one seed.
func NewSession(cfg *config.Config, opts Options) (*Session, error) {
	g, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed ^ envSeedSalt))
	return &Session{
		Game:      g,
		Obstacles: environment.NewObstacleField(g.cfg, rng),
		Food:      environment.NewFoodField(g.cfg, rng),
	}, nil
}

// Step advances the environment, then the population, by one tick.
func (s *Session) Step() TickResult {
	next := s.Game.TickCount() + 1
	s.Obstacles.Update(next)
	s.Food.Update(next)
	res := s.Game.Tick(s.Obstacles.Obstacles(), s.Food.Items())
	s.Food.RemoveEaten()
	return res
}

// Close releases the game's resources.
func (s *Session) Close() error {
	return s.Game.Close()
}
