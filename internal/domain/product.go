package domain

// ProductOption — единица учета склада: конкретная пара цвет/размер товара.
// Остатки (Stock) списываются только при settlement корзины и никогда
// не уходят в минус (ограничение продублировано CHECK-ом в схеме).
type ProductOption struct {
	ID        int64  `json:"optionId"`
	ProductID int64  `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
}

// OptionSet — вложенная карта цвет -> размер -> количество.
// Исторический формат API: и для создания опций (количество = приход на склад),
// и для добавления в корзину (количество = желаемое число единиц).
type OptionSet map[string]map[string]int

type Category struct {
	ID          int64  `json:"categoryId"`
	Description string `json:"description"`
}

// ProductRow — плоская строка выборки товара (товар + опция + категория),
// как ее возвращает JOIN в репозитории. Хендлеры отдают наружу ProductView.
type ProductRow struct {
	ProductID int64
	Price     float64
	Color     string
	Size      string
	Stock     int
	Category  string
}

// ProductView — внешнее представление товара со сгруппированными опциями.
type ProductView struct {
	ProductID  int64     `json:"productId"`
	Price      float64   `json:"price"`
	Categories []string  `json:"categories"`
	Options    OptionSet `json:"options"`
}

// ProductFilter — параметры выборки каталога. Пустые значения не фильтруют.
type ProductFilter struct {
	Category string
	Color    string
	Size     string
	PriceMin float64
	PriceMax float64
}

// ProductUpdate — частичное обновление товара: цена и/или полный список категорий.
type ProductUpdate struct {
	Price      *float64 `json:"price"`
	Categories []string `json:"categories"`
}
