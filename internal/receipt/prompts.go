package receipt

// currencyPrompt asks the model for a bare ISO 4217 code
const currencyPrompt = `You are an assistant that reads receipt data and decides which currency it is in.

Instructions:
- Use the words, symbols and context in the receipt to identify the currency as accurately as you can.
- Common indicators:
    - "₹", "INR", "GST", "MRP", "CGST", "SGST" usually mean Indian Rupees.
    - "$", "USD" usually mean US Dollars.
    - "£", "GBP" usually mean British Pounds.
- Reply with the ISO currency code only (for example "INR" for Indian Rupees or "USD" for US Dollars).`

// interpretPrompt describes the item extraction contract
const interpretPrompt = `You are an assistant that turns receipt data into a list of item names and prices, including discounts and extra charges.

Instructions:
- Treat every item on the receipt as a separate entry, even when the same name and price appear more than once.
- When you see "discount" or "savings", apply it to the item right before it and output that item once with its final adjusted price. Do not output the discount as its own entry.
- Expand abbreviated item names into full words (for example "SB WHL MLK" becomes "Store Brand Whole Milk").
- Output GST, VAT, CGST, SGST or any other tax as its own entry named after the tax.
- Lines showing a total, subtotal or anything similar (a value that is the sum of the items above it) are not items. Leave them out.
- Calculate the total of all items after discounts.
- Output JSON only: an array where each entry is { "item": "Item Name", "price": adjustedPrice } and price is a number.
- The last entry must be the total in the form { "item": "TOTAL", "price": totalAmount }.`

func currencyMessage(text string) string {
	return "Analyze the following receipt data and identify the currency:\n" + text
}

func interpretMessage(text string) string {
	return "Here is the receipt data:\n" + text
}
