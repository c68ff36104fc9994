package rest

import (
	"context"
)

// API defines the operations offered by Client
type API interface {
	// Connect loads the API root links
	Connect(ctx context.Context) error

	User(ctx context.Context) (*User, error)

	// Domain operations
	Domains(ctx context.Context) ([]*Domain, error)
	AddDomain(ctx context.Context, id string) (*Domain, error)
	FindDomain(ctx context.Context, id string) (*Domain, error)
	UpdateDomain(ctx context.Context, d *Domain, newID string) (*Domain, error)
	DeleteDomain(ctx context.Context, d *Domain, force bool) error

	// Application operations
	Applications(ctx context.Context, d *Domain) ([]*Application, error)
	AddApplication(ctx context.Context, d *Domain, name, cartridge string) (*Application, error)
	FindApplication(ctx context.Context, name string) (*Application, error)
	StartApplication(ctx context.Context, a *Application) error
	StopApplication(ctx context.Context, a *Application, force bool) error
	RestartApplication(ctx context.Context, a *Application) error
	DeleteApplication(ctx context.Context, a *Application) error

	// Cartridge operations
	Cartridges(ctx context.Context) ([]*Cartridge, error)
	FindCartridge(ctx context.Context, name string) (*Cartridge, error)
	ApplicationCartridges(ctx context.Context, a *Application) ([]*Cartridge, error)
	AddCartridge(ctx context.Context, a *Application, name string) (*Cartridge, error)
	StartCartridge(ctx context.Context, cart *Cartridge) error
	StopCartridge(ctx context.Context, cart *Cartridge) error
	RestartCartridge(ctx context.Context, cart *Cartridge) error
	ReloadCartridge(ctx context.Context, cart *Cartridge) error
	DeleteCartridge(ctx context.Context, cart *Cartridge) error

	// Key operations
	Keys(ctx context.Context) ([]*Key, error)
	AddKey(ctx context.Context, name, content, keyType string) (*Key, error)
	FindKey(ctx context.Context, name string) (*Key, error)
	UpdateKey(ctx context.Context, k *Key, keyType, content string) (*Key, error)
	DeleteKey(ctx context.Context, k *Key) error
}

var _ API = (*Client)(nil)
