package models

// TransactionType classifies how a spend counts against the monthly goal.
type TransactionType string

const (
	TypeOverExpense  TransactionType = "OVER_EXPENSE"
	TypeFixedExpense TransactionType = "FIXED_EXPENSE"
	TypeNone         TransactionType = "NONE"
)

// TransactionTypes lists every valid transaction type.
var TransactionTypes = []TransactionType{
	TypeOverExpense,
	TypeFixedExpense,
	TypeNone,
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Category is the fixed spending-category set served by the backend.
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryCafeSnack     Category = "CAFE_SNACK"
	CategoryAlcohol       Category = "ALCOHOL"
	CategoryConvenience   Category = "CONVENIENCE"
	CategoryShopping      Category = "SHOPPING"
	CategoryFashion       Category = "FASHION"
	CategoryBeauty        Category = "BEAUTY"
	CategoryTransport     Category = "TRANSPORT"
	CategoryCar           Category = "CAR"
	CategoryHousing       Category = "HOUSING"
	CategoryCommunication Category = "COMMUNICATION"
	CategoryMedical       Category = "MEDICAL"
	CategoryFinance       Category = "FINANCE"
	CategoryCulture       Category = "CULTURE"
	CategoryTravel        Category = "TRAVEL"
	CategoryEducation     Category = "EDUCATION"
	CategoryChild         Category = "CHILD"
	CategoryPet           Category = "PET"
	CategoryEvent         Category = "EVENT"
	CategoryEtc           Category = "ETC"
)

// Categories lists every valid spending category.
var Categories = []Category{
	CategoryFood,
	CategoryCafeSnack,
	CategoryAlcohol,
	CategoryConvenience,
	CategoryShopping,
	CategoryFashion,
	CategoryBeauty,
	CategoryTransport,
	CategoryCar,
	CategoryHousing,
	CategoryCommunication,
	CategoryMedical,
	CategoryFinance,
	CategoryCulture,
	CategoryTravel,
	CategoryEducation,
	CategoryChild,
	CategoryPet,
	CategoryEvent,
	CategoryEtc,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
