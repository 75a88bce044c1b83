// services/shop.go - Badge Shop
//
// Badges unlock strictly in ladder order: bronze, silver, gold, diamond.
// The diamond badge is repeatable once gold is owned; every other tier can
// be bought exactly once, and only as the immediate successor of the
// highest owned tier.
package services

import (
	"fmt"

	"studyclub/database"
	"studyclub/models"
)

const (
	BadgeBronze  = "bronze"
	BadgeSilver  = "silver"
	BadgeGold    = "gold"
	BadgeDiamond = "diamond"
)

// badgeTiers is the fixed ladder. Index 0 is the "no badge" sentinel.
var badgeTiers = []string{"", BadgeBronze, BadgeSilver, BadgeGold, BadgeDiamond}

var badgePrices = map[string]int{
	BadgeBronze:  50,
	BadgeSilver:  80,
	BadgeGold:    120,
	BadgeDiamond: 200,
}

// PurchaseResult is the view snapshot returned after a shop operation.
type PurchaseResult struct {
	Tier              string `json:"tier"`
	Price             int    `json:"price"`
	Score             int    `json:"score"`
	OwnedBadgeTier    string `json:"owned_badge_tier"`
	EquippedBadge     string `json:"equipped_badge"`
	DiamondBadgeCount int    `json:"diamond_badge_count"`
	AlreadyOwned      bool   `json:"already_owned"`
}

// ShopItem describes one catalog entry with its state for a given user.
type ShopItem struct {
	Tier              string `json:"tier"`
	Price             int    `json:"price"`
	Owned             bool   `json:"owned"`
	Equipped          bool   `json:"equipped"`
	Purchasable       bool   `json:"purchasable"`
	Locked            bool   `json:"locked"`
	RequiredTier      string `json:"required_tier,omitempty"`
	DiamondBadgeCount int    `json:"diamond_badge_count,omitempty"`
}

func tierIndex(tier string) int {
	for i, t := range badgeTiers {
		if t == tier {
			return i
		}
	}
	return -1
}

// BadgePrice returns the catalog price for a tier, or 0 for unknown tiers.
func BadgePrice(tier string) int {
	return badgePrices[tier]
}

// PurchaseBadge buys a badge for the user. Re-purchasing an already owned
// lower tier degrades to a free equip. The diamond tier is repeatable and
// increments the diamond count on every purchase.
func PurchaseBadge(userID uint, tier string) (*PurchaseResult, error) {
	idx := tierIndex(tier)
	if idx <= 0 {
		return nil, ErrUnknownTier
	}

	mu := lockUser(userID)
	defer mu.Unlock()

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	ownedIdx := tierIndex(user.OwnedBadgeTier)
	if ownedIdx < 0 {
		ownedIdx = 0
	}
	price := badgePrices[tier]

	if tier == BadgeDiamond {
		// Repeatable top tier, but only after gold is owned.
		if ownedIdx < tierIndex(BadgeGold) {
			return nil, &TierLockedError{Tier: tier, Required: BadgeGold}
		}
		if user.Score < price {
			return nil, ErrInsufficientPoints
		}

		user.Score -= price
		user.DiamondBadgeCount++
		user.OwnedBadgeTier = BadgeDiamond
		user.EquippedBadge = BadgeDiamond

		if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"score":               user.Score,
			"owned_badge_tier":    user.OwnedBadgeTier,
			"equipped_badge":      user.EquippedBadge,
			"diamond_badge_count": user.DiamondBadgeCount,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to save purchase: %w", err)
		}

		return purchaseSnapshot(&user, tier, price, false), nil
	}

	if idx <= ownedIdx {
		// Already owned: equipping a lower tier is always allowed and free.
		user.EquippedBadge = tier
		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Update("equipped_badge", tier).Error; err != nil {
			return nil, fmt.Errorf("failed to equip badge: %w", err)
		}
		return purchaseSnapshot(&user, tier, 0, true), nil
	}

	if idx != ownedIdx+1 {
		return nil, &TierLockedError{Tier: tier, Required: badgeTiers[idx-1]}
	}

	if user.Score < price {
		return nil, ErrInsufficientPoints
	}

	user.Score -= price
	user.OwnedBadgeTier = tier
	user.EquippedBadge = tier

	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"score":            user.Score,
		"owned_badge_tier": user.OwnedBadgeTier,
		"equipped_badge":   user.EquippedBadge,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to save purchase: %w", err)
	}

	return purchaseSnapshot(&user, tier, price, false), nil
}

// EquipBadge puts on an already-owned badge.
func EquipBadge(userID uint, tier string) (*PurchaseResult, error) {
	idx := tierIndex(tier)
	if idx <= 0 {
		return nil, ErrUnknownTier
	}

	mu := lockUser(userID)
	defer mu.Unlock()

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	ownedIdx := tierIndex(user.OwnedBadgeTier)
	if idx > ownedIdx {
		return nil, ErrTierNotOwned
	}

	user.EquippedBadge = tier
	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("equipped_badge", tier).Error; err != nil {
		return nil, fmt.Errorf("failed to equip badge: %w", err)
	}

	return purchaseSnapshot(&user, tier, 0, true), nil
}

// ShopCatalog returns every tier with its purchase/equip state for the user.
func ShopCatalog(user *models.User) []ShopItem {
	ownedIdx := tierIndex(user.OwnedBadgeTier)
	if ownedIdx < 0 {
		ownedIdx = 0
	}

	items := make([]ShopItem, 0, len(badgeTiers)-1)
	for i, tier := range badgeTiers {
		if i == 0 {
			continue
		}

		item := ShopItem{
			Tier:     tier,
			Price:    badgePrices[tier],
			Owned:    i <= ownedIdx,
			Equipped: user.EquippedBadge == tier,
		}

		switch {
		case tier == BadgeDiamond:
			if ownedIdx >= tierIndex(BadgeGold) {
				item.Purchasable = true // repeatable
				item.DiamondBadgeCount = user.DiamondBadgeCount
			} else {
				item.Locked = true
				item.RequiredTier = BadgeGold
			}
		case i <= ownedIdx:
			// Owned tiers stay re-equippable.
		case i == ownedIdx+1:
			item.Purchasable = true
		default:
			item.Locked = true
			item.RequiredTier = badgeTiers[i-1]
		}

		items = append(items, item)
	}
	return items
}

func purchaseSnapshot(user *models.User, tier string, price int, alreadyOwned bool) *PurchaseResult {
	return &PurchaseResult{
		Tier:              tier,
		Price:             price,
		Score:             user.Score,
		OwnedBadgeTier:    user.OwnedBadgeTier,
		EquippedBadge:     user.EquippedBadge,
		DiamondBadgeCount: user.DiamondBadgeCount,
		AlreadyOwned:      alreadyOwned,
	}
}
