package service

import (
	"bakery-service/internal/models"

	"github.com/google/uuid"
)

// AnalyticsScope — кто может смотреть аналитику чужого магазина по явному store_id
type AnalyticsScope string

const (
	// AnalyticsScopeOpen: любой STORE/MAIN_STORE видит любой магазин (историческое поведение)
	AnalyticsScopeOpen AnalyticsScope = "open"
	// AnalyticsScopeMainStoreOnly: чужие магазины видит только MAIN_STORE
	AnalyticsScopeMainStoreOnly AnalyticsScope = "main_store_only"
)

func ParseAnalyticsScope(s string) (AnalyticsScope, bool) {
	switch AnalyticsScope(s) {
	case AnalyticsScopeOpen, AnalyticsScopeMainStoreOnly:
		return AnalyticsScope(s), true
	}
	return "", false
}

// Capability — именованные права, которые зависят от настроек, а не только от роли
type Capability string

const CapViewAnyStoreAnalytics Capability = "view_any_store_analytics"

type Policy struct {
	AnalyticsScope AnalyticsScope
}

func DefaultPolicy() Policy {
	return Policy{AnalyticsScope: AnalyticsScopeOpen}
}

func (p Policy) Has(a Actor, c Capability) bool {
	switch c {
	case CapViewAnyStoreAnalytics:
		switch a.Role {
		case models.RoleMainStore:
			return true
		case models.RoleStore:
			return p.AnalyticsScope == AnalyticsScopeOpen
		case models.RoleFactory:
			return false
		}
	}
	return false
}

func canPlaceOrders(r models.Role) bool {
	switch r {
	case models.RoleMainStore, models.RoleStore:
		return true
	case models.RoleFactory:
		return false
	}
	return false
}

func canFulfil(r models.Role) bool {
	switch r {
	case models.RoleFactory:
		return true
	case models.RoleMainStore, models.RoleStore:
		return false
	}
	return false
}

func canReceive(r models.Role) bool { return canPlaceOrders(r) }

func canManageCatalog(r models.Role) bool {
	switch r {
	case models.RoleMainStore:
		return true
	case models.RoleStore, models.RoleFactory:
		return false
	}
	return false
}

// ownsPlacement: STORE — только свои заказы, MAIN_STORE — любые
func ownsPlacement(a Actor, placedBy uuid.UUID) bool {
	switch a.Role {
	case models.RoleMainStore:
		return true
	case models.RoleStore:
		return a.ID == placedBy
	case models.RoleFactory:
		return false
	}
	return false
}

func ownsAssignment(a Actor, factory *uuid.UUID) bool {
	return a.Role == models.RoleFactory && factory != nil && *factory == a.ID
}
