package normalizer

const productURL = "https://cn.puma.com/pdp/37512301/37512301001.html"

const detailBody = `{"code":"0","data":{"itemDetailList":[
	{
		"code": "37512301",
		"title": "男女同款跑步鞋",
		"salePrice": 599,
		"description": "<p>轻盈缓震</p><ul><li>鞋面：织物</li><li>   </li><li>外底：橡胶</li><li>内里：聚酯纤维</li></ul>",
		"attrSaleList": [{"attributeValueList": [{"attributeValueFrontName": "Black",
			"itemAttributeValueImageList": [{"picUrl": "https://img.puma.com/a1.jpg"}, {"picUrl": "https://img.puma.com/a2.jpg"}]}]}],
		"itemImageList": [{"picUrl": "https://img.puma.com/i1.jpg"}],
		"skuList": [
			{"attrSaleList": [{"attributeValueList": [{"attributeValueFrontName": "Black"}]}, {"attributeValueList": [{"attributeValueFrontName": "42"}]}], "netqty": 0},
			{"attrSaleList": [{"attributeValueList": [{"attributeValueFrontName": "Black"}]}, {"attributeValueList": [{"attributeValueFrontName": "43"}]}], "netqty": 5}
		]
	},
	{
		"code": "37512302",
		"title": "男女同款跑步鞋",
		"salePrice": "649.00",
		"description": null,
		"attrSaleList": [{"attributeValueList": [{"attributeValueFrontName": "Red", "itemAttributeValueImageList": []}]}],
		"itemImageList": [{"picUrl": "https://img.puma.com/i2.jpg"}, {"picUrl": "https://img.puma.com/i3.jpg"}],
		"skuList": [
			{"attrSaleList": [{"attributeValueList": [{"attributeValueFrontName": "Red"}]}, {"attributeValueList": [{"attributeValueFrontName": "M"}]}], "netqty": 2}
		]
	},
	{
		"code": "37512303",
		"salePrice": 649,
		"attrSaleList": [],
		"itemImageList": [],
		"skuList": [
			{"attrSaleList": [{"attributeValueList": [{"attributeValueFrontName": "Red"}]}, {"attributeValueList": [{"attributeValueFrontName": "M"}]}], "netqty": -1}
		]
	}
]}}`
