package repository

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products  ProductRepository
	Movements StockMovementRepository
	Orders    OrderRepository
}
