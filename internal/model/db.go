package model

import "time"

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	DiscordID string `gorm:"size:32;uniqueIndex;not null"`
	CreatedAt time.Time
}

type Transaction struct {
	ID uint `gorm:"primaryKey"`
	// storefront-issued transaction id, e.g. tbx-000a0000a00000-aaa0aa
	TbxID string `gorm:"size:64;uniqueIndex;not null"`
	// nullable: a transaction logged from a purchase notification may be unclaimed
	CustomerID    *uint  `gorm:"index"`
	PurchaserName string `gorm:"size:64"`
	PurchaserUUID string `gorm:"size:64"`
	Refund        bool   `gorm:"not null;default:false"`
	Chargeback    bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

type TransactionPackage struct {
	ID      uint   `gorm:"primaryKey"`
	TbxID   string `gorm:"size:64;uniqueIndex:idx_tbxid_package;not null"`
	Package string `gorm:"size:128;uniqueIndex:idx_tbxid_package;not null"`
}

type CustomerDeveloper struct {
	ID         uint   `gorm:"primaryKey"`
	CustomerID uint   `gorm:"uniqueIndex:idx_customer_developer;not null"`
	DiscordID  string `gorm:"size:32;uniqueIndex:idx_customer_developer;not null"`
	CreatedAt  time.Time
}

type Ticket struct {
	ID              uint   `gorm:"primaryKey"`
	Category        uint   `gorm:"index;not null"`
	TicketName      string `gorm:"size:100"`
	ChannelID       string `gorm:"size:32;index;not null"`
	UserID          string `gorm:"size:32;not null"`
	UserUsername    string `gorm:"size:64"`
	UserDisplayName string `gorm:"size:64"`
	OpenedAt        time.Time
	ClosedAt        *time.Time `gorm:"index"`
}

type TicketCategory struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:64;not null"`
	Description string `gorm:"size:256"`
	Emoji       *string `gorm:"size:16"`
	// Discord category channel the ticket channels are created under
	CategoryID   string `gorm:"size:32;not null"`
	RequireTbxID bool   `gorm:"not null;default:false"`
}

type TicketCategoryField struct {
	ID          uint   `gorm:"primaryKey"`
	Category    uint   `gorm:"index;not null"`
	Label       string `gorm:"size:45;not null"`
	Placeholder string `gorm:"size:100"`
	Required    bool   `gorm:"not null;default:true"`
	ShortField  bool   `gorm:"not null;default:true"`
	MinLength   *int
	MaxLength   *int
}

type TicketMember struct {
	ID       uint   `gorm:"primaryKey"`
	TicketID uint   `gorm:"uniqueIndex:idx_ticket_member;not null"`
	UserID   string `gorm:"size:32;uniqueIndex:idx_ticket_member;not null"`
	AddedBy  string `gorm:"size:32"`
	AddedAt  time.Time
	Removed  bool `gorm:"not null;default:false"`
}

// TicketMessage is the append-only archive of everything said in a ticket
// channel. Embeds are serialized into Content behind an <EMBED:...> sentinel.
type TicketMessage struct {
	ID          uint   `gorm:"primaryKey"`
	TicketID    uint   `gorm:"index;not null"`
	AuthorID    string `gorm:"size:32;not null"`
	DisplayName string `gorm:"size:64"`
	Avatar      string `gorm:"size:256"`
	Content     string `gorm:"type:text"`
	CreatedAt   time.Time
}

type Setting struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:64;uniqueIndex;not null"`
	DataType string `gorm:"size:16;not null"`
	Value    string `gorm:"size:512;not null"`
}
