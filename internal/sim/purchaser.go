package sim

// UpgradePurchaser allows interactive writers to buy upgrades.
type UpgradePurchaser interface {
	SetPurchaser(func(id string) error)
}
