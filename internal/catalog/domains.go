package catalog

// Domain names in run order.
const (
	Sales      = "sales"
	Operations = "operations"
	Finance    = "finance"
)

func dim(name string, cols ...string) Table {
	return Table{Name: name, Kind: KindDimension, Columns: cols}
}

func fact(name string, rules []Rule, cols ...string) Table {
	return Table{Name: name, Kind: KindFact, Columns: cols, Rules: rules}
}

// Domains returns the catalog in the fixed run order. Sales owns the shared
// dimensions, so it must load before the domains whose facts reference them.
func Domains() []Domain {
	regionKey := []Rule{{Column: "regionkey", Coercion: NullableInt}}

	return []Domain{
		{
			Name: Sales,
			Dimensions: []Table{
				dim("dimdate", "datekey", "fulldate", "year", "quarter", "month", "monthname",
					"dayofmonth", "dayofweek", "dayname", "isweekday"),
				dim("dimregion", "regionkey", "countrycode", "countryname", "regionname", "cityname"),
				dim("dimproduct", "productkey", "productcode", "productname", "brand", "category",
					"subcategory", "uom", "isactive"),
				dim("dimcustomer", "customerkey", "customercode", "customername", "customertype",
					"customersegment", "regionkey", "channel", "isactive"),
				dim("dimwarehouse", "warehousekey", "warehousecode", "warehousename", "regionkey", "isactive"),
				dim("dimsalesrep", "salesrepkey", "employeecode", "fullname", "regionkey", "email", "isactive"),
			},
			Facts: []Table{
				fact("factsales", nil, "datekey", "customerkey", "productkey", "regionkey", "salesrepkey",
					"warehousekey", "invoicenumber", "invoicelineno", "quantity", "listprice",
					"discountamount", "netsales", "cogs", "grossmargin", "currency"),
				fact("factsalestarget", nil, "datekey", "regionkey", "salesrepkey", "productkey",
					"targetrevenue", "targetquantity"),
				fact("factorders", nil, "ordernumber", "orderlineno", "orderdatekey", "customerkey",
					"productkey", "regionkey", "warehousekey", "orderedqty", "requesteddeliverydate",
					"promiseddeliverydate", "actualshipdate", "shippedqty", "cancelledqty", "isontime", "isinfull"),
			},
		},
		{
			Name: Operations,
			Facts: []Table{
				fact("factinventory", nil, "datekey", "productkey", "warehousekey", "openingqty", "inboundqty",
					"outboundqty", "closingqty", "inventoryvalue", "averageagedays", "provisionamount"),
				fact("factproduction", nil, "datekey", "productkey", "warehousekey", "producedqty", "scrapqty",
					"machinehours", "downtimehours"),
			},
		},
		{
			Name: Finance,
			Dimensions: []Table{
				dim("dimglaccount", "glaccountkey", "glaccountcode", "glaccountname", "statementtype",
					"category", "subcategory"),
			},
			Facts: []Table{
				fact("factfinancepl", regionKey, "datekey", "glaccountkey", "regionkey", "amount", "currency"),
				fact("factfinancebs", regionKey, "datekey", "glaccountkey", "regionkey", "balanceamount", "currency"),
				fact("factfinancecf", regionKey, "datekey", "glaccountkey", "regionkey", "cashflowamount", "currency"),
			},
		},
	}
}
