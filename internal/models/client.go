package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Client represents a person whose measurements a trainer tracks.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Owner     OwnerRef  `json:"user_id"`
}

// OwnerRef is the optional owning account of a client. Rows created before
// accounts existed have no owner.
type OwnerRef struct {
	accountID int64
	owned     bool
}

// OwnedBy returns a reference to the given account.
func OwnedBy(accountID int64) OwnerRef {
	return OwnerRef{accountID: accountID, owned: true}
}

// Unowned returns the empty owner reference.
func Unowned() OwnerRef {
	return OwnerRef{}
}

// AccountID returns the owning account id and whether there is one.
func (o OwnerRef) AccountID() (int64, bool) {
	return o.accountID, o.owned
}

// Is reports whether the reference points at accountID. An unowned
// reference matches no account.
func (o OwnerRef) Is(accountID int64) bool {
	return o.owned && o.accountID == accountID
}

func (o OwnerRef) String() string {
	if !o.owned {
		return "unowned"
	}
	return fmt.Sprintf("account:%d", o.accountID)
}

// MarshalJSON encodes the owner id, or null for unowned clients.
func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if !o.owned {
		return []byte("null"), nil
	}
	return json.Marshal(o.accountID)
}

// UnmarshalJSON accepts an account id or null.
func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Unowned()
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*o = OwnedBy(id)
	return nil
}

// Scan implements sql.Scanner for the nullable user_id column.
func (o *OwnerRef) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = Unowned()
	case int64:
		*o = OwnedBy(v)
	case int32:
		*o = OwnedBy(int64(v))
	default:
		return fmt.Errorf("models: cannot scan %T into OwnerRef", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (o OwnerRef) Value() (driver.Value, error) {
	if !o.owned {
		return nil, nil
	}
	return o.accountID, nil
}
