package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Comment, Transaction и Photo - исторические записи.
// Ссылки на User/Product опциональны: при удалении родителя
// Comment и Transaction переживают его (FK обнуляется), Photo удаляется.

// Comment - отзыв пользователя о товаре.
type Comment struct {
	ID        int64
	Title     string
	Content   string
	UserID    *int64
	ProductID *int64
	CreatedAt time.Time
}

func (c *Comment) Kind() Kind     { return KindComment }
func (c *Comment) GetID() int64   { return c.ID }
func (c *Comment) SetID(id int64) { c.ID = id }
func (c *Comment) Key() Criteria  { return ByID(c.ID) }

func (c *Comment) Values() Fields {
	return Fields{
		"id":         c.ID,
		"title":      c.Title,
		"content":    c.Content,
		"user_id":    optInt64(c.UserID),
		"product_id": optInt64(c.ProductID),
		"created_at": c.CreatedAt,
	}
}

func (c *Comment) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			c.ID, err = toInt64(v)
		case "title":
			c.Title, err = toString(v)
		case "content":
			c.Content, err = toString(v)
		case "user_id":
			c.UserID, err = toOptInt64(v)
		case "product_id":
			c.ProductID, err = toOptInt64(v)
		case "created_at":
			c.CreatedAt, err = toTime(v)
		default:
			return unknownField(KindComment, k)
		}
		if err != nil {
			return badValue(KindComment, k, err)
		}
	}
	return nil
}

// Transaction - покупка товара пользователем.
type Transaction struct {
	ID        int64
	Amount    int
	FullPrice decimal.Decimal
	UserID    *int64
	ProductID *int64
	CreatedAt time.Time
}

func (t *Transaction) Kind() Kind     { return KindTransaction }
func (t *Transaction) GetID() int64   { return t.ID }
func (t *Transaction) SetID(id int64) { t.ID = id }
func (t *Transaction) Key() Criteria  { return ByID(t.ID) }

func (t *Transaction) Values() Fields {
	return Fields{
		"id":         t.ID,
		"amount":     t.Amount,
		"full_price": t.FullPrice,
		"user_id":    optInt64(t.UserID),
		"product_id": optInt64(t.ProductID),
		"created_at": t.CreatedAt,
	}
}

func (t *Transaction) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			t.ID, err = toInt64(v)
		case "amount":
			t.Amount, err = toInt(v)
		case "full_price":
			t.FullPrice, err = toDecimal(v)
		case "user_id":
			t.UserID, err = toOptInt64(v)
		case "product_id":
			t.ProductID, err = toOptInt64(v)
		case "created_at":
			t.CreatedAt, err = toTime(v)
		default:
			return unknownField(KindTransaction, k)
		}
		if err != nil {
			return badValue(KindTransaction, k, err)
		}
	}
	return nil
}

// Photo - метаданные загруженного файла; сами байты лежат в FileStorage.
type Photo struct {
	ID          int64
	URL         string
	Filename    string // generated, without extension
	Type        string // mime subtype, used as extension
	Size        int64
	Destination string
	UserID      *int64
	ProductID   *int64
}

// StoredName returns the object name under which the file bytes live.
func (p *Photo) StoredName() string {
	if p.Type == "" {
		return p.Filename
	}
	return p.Filename + "." + p.Type
}

func (p *Photo) Kind() Kind     { return KindPhoto }
func (p *Photo) GetID() int64   { return p.ID }
func (p *Photo) SetID(id int64) { p.ID = id }
func (p *Photo) Key() Criteria  { return ByID(p.ID) }

func (p *Photo) Values() Fields {
	return Fields{
		"id":          p.ID,
		"url":         p.URL,
		"filename":    p.Filename,
		"type":        p.Type,
		"size":        p.Size,
		"destination": p.Destination,
		"user_id":     optInt64(p.UserID),
		"product_id":  optInt64(p.ProductID),
	}
}

func (p *Photo) Assign(f Fields) error {
	for k, v := range f {
		var err error
		switch k {
		case "id":
			p.ID, err = toInt64(v)
		case "url":
			p.URL, err = toString(v)
		case "filename":
			p.Filename, err = toString(v)
		case "type":
			p.Type, err = toString(v)
		case "size":
			p.Size, err = toInt64(v)
		case "destination":
			p.Destination, err = toString(v)
		case "user_id":
			p.UserID, err = toOptInt64(v)
		case "product_id":
			p.ProductID, err = toOptInt64(v)
		default:
			return unknownField(KindPhoto, k)
		}
		if err != nil {
			return badValue(KindPhoto, k, err)
		}
	}
	return nil
}
