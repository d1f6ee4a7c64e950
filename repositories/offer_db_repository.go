package repositories

// OfferDbRepository holds the queries on the application database. It is stateless, the executor
// (pool or transaction) is passed to each method.
type OfferDbRepository struct{}

func NewOfferDbRepository() *OfferDbRepository {
	return &OfferDbRepository{}
}
