package rest

import (
	"context"
	"fmt"
	"strconv"
)

// User retrieves the authenticated user
func (c *Client) User(ctx context.Context) (*User, error) {
	return fetch[*User](ctx, c, c.links, LinkGetUser, nil)
}

// Domains lists the user's domains
func (c *Client) Domains(ctx context.Context) ([]*Domain, error) {
	domains, err := fetch[[]*Domain](ctx, c, c.links, LinkListDomains, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	c.logger.Debug().Int("count", len(domains)).Msg("Retrieved domains")
	return domains, nil
}

// AddDomain creates a domain with the given namespace
func (c *Client) AddDomain(ctx context.Context, id string) (*Domain, error) {
	return fetch[*Domain](ctx, c, c.links, LinkAddDomain, map[string]string{"id": id})
}

// FindDomain returns the domain with the given namespace
func (c *Client) FindDomain(ctx context.Context, id string) (*Domain, error) {
	domains, err := c.Domains(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range domains {
		if d.ID == id {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: domain %s", ErrResourceNotFound, id)
}

// UpdateDomain renames a domain
func (c *Client) UpdateDomain(ctx context.Context, d *Domain, newID string) (*Domain, error) {
	return fetch[*Domain](ctx, c, d.Links, LinkUpdate, map[string]string{"id": newID})
}

// DeleteDomain deletes a domain; force also removes its applications
func (c *Client) DeleteDomain(ctx context.Context, d *Domain, force bool) error {
	_, err := c.call(ctx, d.Links, LinkDelete, map[string]string{"force": strconv.FormatBool(force)})
	return err
}

// Applications lists the applications of a domain
func (c *Client) Applications(ctx context.Context, d *Domain) ([]*Application, error) {
	apps, err := fetch[[]*Application](ctx, c, d.Links, LinkListApplications, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications of %s: %w", d.ID, err)
	}

	c.logger.Debug().Str("domain", d.ID).Int("count", len(apps)).Msg("Retrieved applications")
	return apps, nil
}

// AddApplication creates an application running the given framework cartridge
func (c *Client) AddApplication(ctx context.Context, d *Domain, name, cartridge string) (*Application, error) {
	params := map[string]string{"name": name, "cartridge": cartridge}
	return fetch[*Application](ctx, c, d.Links, LinkAddApplication, params)
}

// FindApplication searches every domain for an application with the given name
func (c *Client) FindApplication(ctx context.Context, name string) (*Application, error) {
	domains, err := c.Domains(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range domains {
		apps, err := c.Applications(ctx, d)
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			if app.Name == name {
				return app, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: application %s", ErrResourceNotFound, name)
}

// StartApplication starts an application
func (c *Client) StartApplication(ctx context.Context, a *Application) error {
	return c.event(ctx, a.Links, LinkStart, "start")
}

// StopApplication stops an application; force kills it without a graceful shutdown
func (c *Client) StopApplication(ctx context.Context, a *Application, force bool) error {
	if force {
		return c.event(ctx, a.Links, LinkForceStop, "force-stop")
	}
	return c.event(ctx, a.Links, LinkStop, "stop")
}

// RestartApplication restarts an application
func (c *Client) RestartApplication(ctx context.Context, a *Application) error {
	return c.event(ctx, a.Links, LinkRestart, "restart")
}

// DeleteApplication deletes an application
func (c *Client) DeleteApplication(ctx context.Context, a *Application) error {
	_, err := c.call(ctx, a.Links, LinkDelete, nil)
	return err
}

// ApplicationCartridges lists the cartridges embedded in an application
func (c *Client) ApplicationCartridges(ctx context.Context, a *Application) ([]*Cartridge, error) {
	return fetch[[]*Cartridge](ctx, c, a.Links, LinkListCartridges, nil)
}

// AddCartridge embeds a cartridge in an application
func (c *Client) AddCartridge(ctx context.Context, a *Application, name string) (*Cartridge, error) {
	return fetch[*Cartridge](ctx, c, a.Links, LinkAddCartridge, map[string]string{"name": name})
}

// Cartridges lists the cartridges offered by the server
func (c *Client) Cartridges(ctx context.Context) ([]*Cartridge, error) {
	return fetch[[]*Cartridge](ctx, c, c.links, LinkListCartridges, nil)
}

// FindCartridge returns the server cartridge with the given name
func (c *Client) FindCartridge(ctx context.Context, name string) (*Cartridge, error) {
	carts, err := c.Cartridges(ctx)
	if err != nil {
		return nil, err
	}

	for _, cart := range carts {
		if cart.Name == name {
			return cart, nil
		}
	}

	return nil, fmt.Errorf("%w: cartridge %s", ErrResourceNotFound, name)
}

// StartCartridge starts an embedded cartridge
func (c *Client) StartCartridge(ctx context.Context, cart *Cartridge) error {
	return c.event(ctx, cart.Links, LinkStart, "start")
}

// StopCartridge stops an embedded cartridge
func (c *Client) StopCartridge(ctx context.Context, cart *Cartridge) error {
	return c.event(ctx, cart.Links, LinkStop, "stop")
}

// RestartCartridge restarts an embedded cartridge
func (c *Client) RestartCartridge(ctx context.Context, cart *Cartridge) error {
	return c.event(ctx, cart.Links, LinkRestart, "restart")
}

// ReloadCartridge reloads an embedded cartridge's configuration
func (c *Client) ReloadCartridge(ctx context.Context, cart *Cartridge) error {
	return c.event(ctx, cart.Links, LinkReload, "reload")
}

// DeleteCartridge removes an embedded cartridge
func (c *Client) DeleteCartridge(ctx context.Context, cart *Cartridge) error {
	_, err := c.call(ctx, cart.Links, LinkDelete, nil)
	return err
}

// Keys lists the user's SSH keys
func (c *Client) Keys(ctx context.Context) ([]*Key, error) {
	user, err := c.User(ctx)
	if err != nil {
		return nil, err
	}
	return fetch[[]*Key](ctx, c, user.Links, LinkListKeys, nil)
}

// AddKey registers an SSH public key
func (c *Client) AddKey(ctx context.Context, name, content, keyType string) (*Key, error) {
	user, err := c.User(ctx)
	if err != nil {
		return nil, err
	}
	params := map[string]string{"name": name, "content": content, "type": keyType}
	return fetch[*Key](ctx, c, user.Links, LinkAddKey, params)
}

// FindKey returns the user's key with the given name
func (c *Client) FindKey(ctx context.Context, name string) (*Key, error) {
	keys, err := c.Keys(ctx)
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		if k.Name == name {
			return k, nil
		}
	}

	return nil, fmt.Errorf("%w: key %s", ErrResourceNotFound, name)
}

// UpdateKey replaces the type and content of a key
func (c *Client) UpdateKey(ctx context.Context, k *Key, keyType, content string) (*Key, error) {
	params := map[string]string{"type": keyType, "content": content}
	return fetch[*Key](ctx, c, k.Links, LinkUpdate, params)
}

// DeleteKey removes a key
func (c *Client) DeleteKey(ctx context.Context, k *Key) error {
	_, err := c.call(ctx, k.Links, LinkDelete, nil)
	return err
}

// event posts a lifecycle event through one of the resource's links
func (c *Client) event(ctx context.Context, links Links, rel, event string) error {
	_, err := c.call(ctx, links, rel, map[string]string{"event": event})
	return err
}
