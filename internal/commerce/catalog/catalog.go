// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog serves the storefront's price catalog.

The catalog is a static YAML document loaded once at startup: a list of
services, each with one or more purchasable plans carrying integer prices in
the fixed store currency. Order placement treats submitted prices as already
resolved against this catalog and only range-validates them.
*/
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/orvia/internal/platform/apperr"
)

// # Catalog Model

// Plan is a purchasable tier of a service.
type Plan struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`

	// Price is an integer amount in the catalog currency.
	Price int64 `yaml:"price" json:"price"`
}

// Service is a sellable product with its plan tiers.
type Service struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Plans       []Plan `yaml:"plans" json:"plans"`
}

// Catalog is the full price list. It is immutable after Load.
type Catalog struct {
	Currency string    `yaml:"currency" json:"currency"`
	Services []Service `yaml:"services" json:"services"`

	byID map[string]*Service
}

/*
Load reads and indexes a catalog YAML document.

Parameters:
  - path: location of the catalog file.

Returns:
  - *Catalog: the parsed catalog.
  - error: read, parse, or integrity failures (duplicate or empty ids,
    negative prices).
*/
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	c.byID = make(map[string]*Service, len(c.Services))
	for i := range c.Services {
		svc := &c.Services[i]
		if svc.ID == "" {
			return nil, fmt.Errorf("catalog: service %q has no id", svc.Name)
		}
		if _, dup := c.byID[svc.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate service id %q", svc.ID)
		}
		for _, plan := range svc.Plans {
			if plan.Price < 0 {
				return nil, fmt.Errorf("catalog: service %q plan %q has negative price", svc.ID, plan.ID)
			}
		}
		c.byID[svc.ID] = svc
	}

	return &c, nil
}

/*
Lookup returns the service with the given id.

Parameters:
  - serviceID: catalog identifier.

Returns:
  - *Service: the service, or an apperr.NotFound-coded error when absent.
  - error: lookup failure.
*/
func (c *Catalog) Lookup(serviceID string) (*Service, error) {
	svc, ok := c.byID[serviceID]
	if !ok {
		return nil, apperr.NotFound("service")
	}
	return svc, nil
}

// Len reports the number of services in the catalog.
func (c *Catalog) Len() int {
	return len(c.Services)
}
