package command

import "math"

const maxCount = math.MaxInt32

type buyHandler struct{}

func (buyHandler) Precheck(cc *Context) error {
	item, qty := cc.Req.Item, cc.Req.Qty
	price, offered := cc.Catalog.BuyPrice(item)
	if !offered {
		return reject(ErrUnknownItem, "Cannot buy %s - Item not available in shop!", item)
	}
	if qty <= 0 || qty > maxCount-cc.State.Inventory[item] {
		return reject(ErrInvalidAmount, "Cannot buy %s - Invalid amount %d", item, qty)
	}
	if int64(qty) > math.MaxInt64/price || cc.State.Money < price*int64(qty) {
		return reject(ErrInsufficientFunds, "Cannot buy %s - Not enough money!", item)
	}
	return nil
}

func (buyHandler) Apply(cc *Context) Result {
	item, qty := cc.Req.Item, cc.Req.Qty
	price, _ := cc.Catalog.BuyPrice(item)
	total := price * int64(qty)
	cc.State.Money -= total
	cc.State.AddItem(item, qty)
	return ok(true, "Bought %d %s for $%d", qty, item, total)
}

type sellHandler struct{}

func (sellHandler) Precheck(cc *Context) error {
	item, qty := cc.Req.Item, cc.Req.Qty
	price, wanted := cc.Catalog.SellPrice(item)
	if !wanted {
		return reject(ErrUnknownItem, "Cannot sell %s - Item not recognized!", item)
	}
	if qty <= 0 {
		return reject(ErrInvalidAmount, "Cannot sell %s - Invalid amount %d", item, qty)
	}
	if cc.State.Inventory[item] < qty {
		return reject(ErrInsufficientInventory, "Cannot sell %s - Not enough in inventory!", item)
	}
	if price*int64(qty) > math.MaxInt64-cc.State.Money {
		return reject(ErrInvalidAmount, "Cannot sell %s - Invalid amount %d", item, qty)
	}
	return nil
}

func (sellHandler) Apply(cc *Context) Result {
	item, qty := cc.Req.Item, cc.Req.Qty
	price, _ := cc.Catalog.SellPrice(item)
	total := price * int64(qty)
	cc.State.ConsumeItem(item, qty)
	cc.State.Money += total
	return ok(true, "Sold %d %s for $%d", qty, item, total)
}
