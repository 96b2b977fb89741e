// Package mocks holds gomock doubles for the port interfaces.
package mocks

//go:generate mockgen -destination=agent_repository.go -package=mocks -mock_names=Repository=MockAgentRepository github.com/alanyang/agent-zones/internal/port/agent Repository
//go:generate mockgen -destination=eventbus.go -package=mocks github.com/alanyang/agent-zones/internal/port/eventbus EventBus
