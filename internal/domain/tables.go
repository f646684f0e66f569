package domain

var Tables = []interface{}{
	// Accounts
	&User{},
	&UserProfile{},
	// Marketplace
	&Offer{},
	&OfferDetail{},
	&Order{},
	&Review{},
	// System
	&AuditLog{},
}
