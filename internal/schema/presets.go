package schema

import "github.com/dbsmedya/cdosync/internal/config"

type preset struct {
	entity          string
	label           string
	fileMarker      string
	customObjectID  int
	keyField        string
	identifierField string
	linkColumn      string
	columns         []Column
}

var presets = map[string]preset{
	config.EntityMembership: {
		entity:          config.EntityMembership,
		label:           "Membership",
		fileMarker:      "membership",
		customObjectID:  13,
		keyField:        "email",
		identifierField: "pk",
		linkColumn:      "email",
		columns: []Column{
			{"pk", "pk", 190},
			{"email", "email", 191},
			{"ticketGroupCategory", "ticket_group_category", 192},
			{"ticketGroupName", "ticket_group_name", 193},
			{"ticketGroupDisplayName", "ticket_group_display_name", 194},
			{"season", "season", 195},
			{"ticketingSystem", "ticketing_system", 196},
		},
	},
	config.EntityTicketActivity: {
		entity:          config.EntityTicketActivity,
		label:           "TicketActivity",
		fileMarker:      "ticketactivity",
		customObjectID:  14,
		keyField:        "buyerEmailAddr",
		identifierField: "pk",
		linkColumn:      "buyer_email_addr",
		columns: []Column{
			{"pk", "pk", 197},
			{"acctId", "acct_id", 198},
			{"activityName", "activity_name", 199},
			{"addDatetime", "add_datetime", 200},
			{"addUser", "add_user", 201},
			{"assocAcctId", "assoc_acct_id", 202},
			{"assocCustNameId", "assoc_cust_name_id", 203},
			{"buyerEmailAddr", "buyer_email_addr", 204},
			{"eventDate", "event_date", 205},
			{"eventId", "event_id", 232},
			{"eventName", "event_name", 233},
			{"eventTime", "event_time", 206},
			{"exportDatetime", "export_datetime", 207},
			{"forwardToEmailAddr", "forward_to_email_addr", 208},
			{"inetTransactionAmount", "inet_transaction_amount", 209},
			{"koreUpdated", "kore_updated", 210},
			{"lastSeat", "last_seat", 211},
			{"name", "name1", 212},
			{"numSeats", "num_seats", 213},
			{"orderLineItem", "order_line_item", 214},
			{"orderLineItemSeq", "order_line_item_seq", 215},
			{"orderNum", "order_num", 216},
			{"origPurchasePrice", "orig_purchase_price", 217},
			{"planEventName", "plan_event_name", 218},
			{"rowName", "row_name", 219},
			{"seatNum", "seat_num", 220},
			{"sectionName", "section_name", 221},
			{"sellerEmailAddr", "seller_email_addr", 222},
			{"tePostingPrice", "te_posting_price", 223},
			{"tePurchasePrice", "te_purchase_price", 224},
			{"teSellerFees", "te_seller_fees", 225},
			{"teamname", "teamname", 226},
			{"tmEventName", "tm_event_name", 227},
			{"tmRowName", "tm_row_name", 228},
			{"tmSectionName", "tm_section_name", 229},
			{"seqId", "seq_id", 230},
			{"sortSeq", "sort_seq", 231},
		},
	},
	config.EntityTickets: {
		entity:          config.EntityTickets,
		label:           "Tickets",
		fileMarker:      "ticket_",
		customObjectID:  15,
		keyField:        "emailAddress",
		identifierField: "pk",
		linkColumn:      "email_addr",
		columns: []Column{
			{"pk", "pk", 234},
			{"emailAddress", "email_addr", 235},
			{"seatGroup", "seatgroup", 236},
			{"acctId", "acct_id", 237},
			{"seasonName", "season_name", 238},
			{"eventId", "event_id", 239},
			{"tmEventName", "tm_event_name", 240},
			{"eventName", "event_name", 241},
			{"eventNameLong", "event_name_long", 301},
			{"sectionName", "section_name", 242},
			{"rowName", "row_name", 243},
			{"priceCode", "price_code", 244},
			{"purchasePrice", "purchase_price", 245},
			{"percentPaid", "percent_paid", 246},
			{"name", "name", 247},
			{"ticketStatus", "ticket_status", 248},
			{"groupFlag", "group_flag", 249},
			{"acctRepFullName", "acct_rep_full_name", 250},
			{"addDateTime", "add_datetime", 251},
			{"seatIncrement", "seat_increment", 252},
			{"totalEvents", "total_events", 253},
			{"addUser", "add_usr", 254},
			{"updDateTime", "upd_datetime", 255},
			{"orderNum", "order_num", 256},
			{"orderLineItem", "order_line_item", 257},
			{"orderLineItemSeq", "order_line_item_seq", 258},
			{"salesSourceName", "sales_source_name", 259},
			{"nameLastFirstMi", "name_last_first_mi", 260},
			{"seasonYear", "season_year", 261},
			{"compName", "comp_name", 262},
			{"koreUpdated", "kore_updated", 263},
			{"fullPrice", "full_price", 264},
			{"printedPrice", "printed_price", 265},
			{"seatNum", "seat_num", 266},
			{"lastSeat", "last_seat", 267},
			{"numSeats", "num_seats", 268},
			{"seats", "seats", 269},
			{"blockPurchasePrice", "block_purchase_price", 270},
			{"owedAmount", "owed_amount", 271},
			{"paidAmount", "paid_amount", 272},
			{"source", "source", 273},
			{"planEventName", "plan_event_name", 274},
			{"priceCodeGroup", "price_code_group", 275},
			{"eventTypeCode", "event_type_code", 276},
			{"acctRepId", "acct_rep_id", 277},
			{"acctTypeDesc", "acct_type_desc", 278},
			{"otherInfo1", "other_info_1", 279},
			{"otherInfo2", "other_info_2", 280},
			{"otherInfo3", "other_info_3", 281},
			{"otherInfo4", "other_info_4", 282},
			{"otherInfo5", "other_info_5", 283},
			{"otherInfo6", "other_info_6", 284},
			{"otherInfo7", "other_info_7", 285},
			{"otherInfo8", "other_info_8", 286},
			{"otherInfo9", "other_info_9", 287},
			{"otherInfo10", "other_info_10", 288},
			{"ticketTypeCategory", "ticket_type_category", 289},
			{"databaseId", "database_id", 290},
			{"ledgerCode", "ledger_code", 291},
			{"seasonId", "season_id", 292},
			{"team", "team", 293},
			{"eventTime", "event_time", 294},
			{"className", "class_name", 295},
			{"pcTicket", "pc_ticket", 296},
			{"pcTax", "pc_tax", 297},
			{"pcLicFee", "pc_licfee", 298},
			{"ticketType", "ticket_type", 299},
			{"ticketTypeCode", "ticket_type_code", 300},
		},
	},
}
